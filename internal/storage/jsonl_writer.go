package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"fxhashETL/internal/model"
)

var errWriterClosed = errors.New("jsonl writer is closed")

// JsonlWriter streams records into a JSONL file, truncating it on open.
// Records are buffered until Close, which must be checked for errors.
type JsonlWriter struct {
	path string
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

func CreateJsonlWriter(path string) (*JsonlWriter, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	buf := bufio.NewWriter(file)
	return &JsonlWriter{path: path, file: file, buf: buf, enc: json.NewEncoder(buf)}, nil
}

func (w *JsonlWriter) PutTransactions(_ context.Context, txs []model.NormalizedTransaction) error {
	if w.file == nil {
		return errWriterClosed
	}
	return encodeLines(w.enc, txs)
}

func (w *JsonlWriter) PutTransformErrors(_ context.Context, failures []model.TransformError) error {
	if w.file == nil {
		return errWriterClosed
	}
	return encodeLines(w.enc, failures)
}

// Close flushes buffered records and closes the file. Calling it again is a no-op.
func (w *JsonlWriter) Close() error {
	if w.file == nil {
		return nil
	}
	file := w.file
	w.file = nil

	if err := w.buf.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.path, err)
	}
	return nil
}
