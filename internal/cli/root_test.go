package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestRootCommandMetadata(t *testing.T) {
	cmd := NewRootCmd()

	if cmd.Use != "aquameter" {
		t.Errorf("Use = %q, want %q", cmd.Use, "aquameter")
	}

	wantSubs := []string{"version", "serve", "scenario", "import", "entries", "report", "chat", "monitor", "completion"}
	for _, name := range wantSubs {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRootRunsVersionSubcommand(t *testing.T) {
	chdir(t, t.TempDir())

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(buf.String(), "Aquameter v") {
		t.Errorf("version output missing, got: %s", buf.String())
	}
}

func TestRootRejectsBadOutputFlag(t *testing.T) {
	chdir(t, t.TempDir())

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"version", "--output", "xml"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected an error for invalid output format")
	}
}
