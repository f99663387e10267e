package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunRerunsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.lua")
	other := filepath.Join(dir, "other.lua")
	if err := os.WriteFile(path, []byte("x = 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	runs := make(chan struct{}, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error {
			runs <- struct{}{}
			return nil
		}, nil)
	}()

	wait := func(what string) {
		t.Helper()
		select {
		case <-runs:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s", what)
		}
	}

	wait("initial run")

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(other, []byte("y = 1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x = 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	wait("rerun after write")

	select {
	case <-runs:
		t.Error("unexpected extra run")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestRunReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmds.txt")
	if err := os.WriteFile(path, []byte("undo"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	boom := errors.New("boom")
	var got error
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Run(ctx, func() error { return boom }, func(err error) { got = err }); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !errors.Is(got, boom) {
		t.Errorf("onError got %v, want boom", got)
	}
}

func TestNewErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := New(filepath.Join(dir, "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("New(missing) error = %v, want not exist", err)
	}
	if _, err := New(dir); !errors.Is(err, ErrNotRegular) {
		t.Errorf("New(dir) error = %v, want ErrNotRegular", err)
	}
}
