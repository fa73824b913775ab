package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fxhashETL/internal/model"
)

func TestJsonlWriterTruncatesAndStreams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tx.jsonl")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{\"stale\":true}\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	w, err := CreateJsonlWriter(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, id := range []string{"1ssvi_1", "1ssvi_2"} {
		tx := model.NormalizedTransaction{TransactionType: model.Listing, FxNftID: id}
		if err := w.PutTransactions(context.Background(), []model.NormalizedTransaction{tx}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close should be a no-op: %v", err)
	}

	rows := readLines(t, path)
	if len(rows) != 2 || rows[0]["fx_nft_id"] != "1ssvi_1" || rows[1]["fx_nft_id"] != "1ssvi_2" {
		t.Fatalf("rows mismatch: %+v", rows)
	}
}

func TestJsonlWriterCloseReportsFlushError(t *testing.T) {
	w, err := CreateJsonlWriter(filepath.Join(t.TempDir(), "errors.jsonl"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	failure := model.TransformError{Type: model.EventCollect, Error: "event has no token"}
	if err := w.PutTransformErrors(context.Background(), []model.TransformError{failure}); err != nil {
		t.Fatalf("put: %v", err)
	}

	// the record is still buffered, so the flush hits the closed file
	w.file.Close()
	if err := w.Close(); err == nil {
		t.Fatalf("expected flush error")
	}
}

func TestJsonlWriterRejectsWritesAfterClose(t *testing.T) {
	w, err := CreateJsonlWriter(filepath.Join(t.TempDir(), "tx.jsonl"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	err = w.PutTransactions(context.Background(), []model.NormalizedTransaction{{FxNftID: "1ssvi_1"}})
	if !errors.Is(err, errWriterClosed) {
		t.Fatalf("expected errWriterClosed, got %v", err)
	}
}
