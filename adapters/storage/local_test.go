package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocal_PutAndExists(t *testing.T) {
	dir := t.TempDir()
	target, err := NewLocal(dir, 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	ctx := context.Background()
	if err := target.Put(ctx, "doc_scanned.jpg", strings.NewReader("payload"),
		map[string]string{"blank_metadata": "true"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := target.Exists(ctx, "doc_scanned.jpg")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("written file must exist")
	}

	ok, err = target.Exists(ctx, "missing.jpg")
	if err != nil || ok {
		t.Errorf("missing file: ok=%v err=%v", ok, err)
	}

	// Metadata side-car lands next to the output.
	if _, err := os.Stat(filepath.Join(dir, "doc_scanned.jpg.meta.json")); err != nil {
		t.Errorf("metadata side-car missing: %v", err)
	}
}

func TestLocal_PutCancelledContext(t *testing.T) {
	target, err := NewLocal(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := target.Put(ctx, "doc.jpg", strings.NewReader("x"), nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}
