// Package dialog resolves the session's input utterances: a file of
// lines wins over a ';'-separated script, which wins over the built-in
// default, all padded or trimmed to the requested cycle count.
package dialog

import (
	"fmt"
	"os"
	"strings"
)

// DefaultUtterance fills cycles no source covers.
const DefaultUtterance = "hello liminal"

// LoadInputs resolves the utterance list for a run of n cycles.
func LoadInputs(inputsPath, script string, cycles int) ([]string, error) {
	if cycles < 1 {
		cycles = 1
	}

	var utterances []string

	switch {
	case inputsPath != "":
		raw, err := os.ReadFile(inputsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read inputs file: %w", err)
		}
		for _, line := range strings.Split(string(raw), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				utterances = append(utterances, line)
			}
		}
	case script != "":
		for _, part := range strings.Split(script, ";") {
			if part = strings.TrimSpace(part); part != "" {
				utterances = append(utterances, part)
			}
		}
	}

	return pad(utterances, cycles), nil
}

// pad trims or repeats the default utterance out to n entries.
func pad(utterances []string, n int) []string {
	if len(utterances) >= n {
		return utterances[:n]
	}
	out := make([]string, 0, n)
	out = append(out, utterances...)
	for len(out) < n {
		out = append(out, DefaultUtterance)
	}
	return out
}
