package dialog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScriptSplitsAndPads(t *testing.T) {
	got, err := LoadInputs("", "hello; how are you ;; feeling calm", 5)
	if err != nil {
		t.Fatalf("LoadInputs failed: %v", err)
	}
	want := []string{"hello", "how are you", "feeling calm", DefaultUtterance, DefaultUtterance}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScriptTrimmedToCycles(t *testing.T) {
	got, err := LoadInputs("", "a;b;c;d", 2)
	if err != nil {
		t.Fatalf("LoadInputs failed: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestInputsFileWinsOverScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.txt")
	if err := os.WriteFile(path, []byte("from file\n\n  second line  \n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := LoadInputs(path, "from script", 2)
	if err != nil {
		t.Fatalf("LoadInputs failed: %v", err)
	}
	if got[0] != "from file" || got[1] != "second line" {
		t.Errorf("got %v, want the file's lines", got)
	}
}

func TestMissingInputsFileFails(t *testing.T) {
	if _, err := LoadInputs(filepath.Join(t.TempDir(), "absent.txt"), "", 2); err == nil {
		t.Error("expected an error for a missing inputs file")
	}
}

func TestDefaultsWhenNoSource(t *testing.T) {
	got, err := LoadInputs("", "", 3)
	if err != nil {
		t.Fatalf("LoadInputs failed: %v", err)
	}
	for i, u := range got {
		if u != DefaultUtterance {
			t.Errorf("got[%d] = %q, want default", i, u)
		}
	}
}

func TestCyclesFloorIsOne(t *testing.T) {
	got, err := LoadInputs("", "", 0)
	if err != nil {
		t.Fatalf("LoadInputs failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len = %d, want 1", len(got))
	}
}
