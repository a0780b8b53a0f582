package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ledgerlite/internal/storage"
)

func TestLocalDisk_Save(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalDisk(dir, "/uploads/receipts/")
	if err != nil {
		t.Fatalf("NewLocalDisk failed: %v", err)
	}

	url, err := store.Save(context.Background(), "receipt.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/receipts/") {
		t.Errorf("unexpected url %q", url)
	}
	if !strings.HasSuffix(url, ".pdf") {
		t.Errorf("expected original extension preserved, got %q", url)
	}
	// The random name must not echo the client filename.
	if strings.Contains(url, "receipt") {
		t.Errorf("client filename leaked into url %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestLocalDisk_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalDisk(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalDisk failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Save(ctx, "receipt.pdf", strings.NewReader("pdf-bytes")); err == nil {
		t.Fatal("expected error from cancelled context")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files written after cancellation, found %d", len(entries))
	}
}

func TestLocalDisk_DistinctNames(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalDisk(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocalDisk failed: %v", err)
	}

	a, err := store.Save(context.Background(), "same.png", strings.NewReader("one"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Save(context.Background(), "same.png", strings.NewReader("two"))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two uploads of the same filename collided: %q", a)
	}
}
