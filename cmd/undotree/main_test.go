package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("UNDOTREE_RENDER_COLOR", "false")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "undotree dev\n") {
		t.Errorf("output = %q", out)
	}
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edits.txt")
	script := "insert 0 'ab'\nundo\nappend c\ntree\n"
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "", "run", path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "├── #1 Insert \"ab\"\n└── #2 Type 'c' (current) (newest)") {
		t.Errorf("output = %q", out)
	}
}

func TestRepl(t *testing.T) {
	out, _, err := execute(t, "append hi\ntext\n", "repl")
	if err != nil {
		t.Fatalf("repl: %v", err)
	}
	if !strings.Contains(out, `"hi"`) {
		t.Errorf("output = %q", out)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "", "--log-level", "chatty", "repl")
	if err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("error = %v, want invalid log level", err)
	}
}

func TestArgs(t *testing.T) {
	if _, _, err := execute(t, "", "run"); err == nil {
		t.Error("run without a file succeeded")
	}
	if _, _, err := execute(t, "", "lua", "a.lua", "b.lua"); err == nil {
		t.Error("lua with two files succeeded")
	}
}

func TestStrictConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "undotree.toml")
	if err := os.WriteFile(cfg, []byte("[history]\nmystery = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, "", "--config", cfg, "repl"); err != nil {
		t.Fatalf("repl with unknown key: %v", err)
	}
	_, _, err := execute(t, "", "--config", cfg, "--strict-config", "repl")
	if err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Errorf("error = %v, want parse error", err)
	}
}
