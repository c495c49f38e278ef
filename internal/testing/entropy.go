// Package testing provides shared fixtures for randconst tests.
package testing

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/teranos/randconst/errors"
)

// SequenceSource hands out bytes from a fixed buffer, in order.
// It fails with io.ErrUnexpectedEOF once the buffer is exhausted.
type SequenceSource struct {
	mu    sync.Mutex
	data  []byte
	calls []int
}

// NewSequenceSource returns a source that yields data byte by byte.
func NewSequenceSource(data ...byte) *SequenceSource {
	return &SequenceSource{data: data}
}

// Draw returns the next n bytes.
func (s *SequenceSource) Draw(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, n)
	if n > len(s.data) {
		return nil, errors.WrapEntropy(io.ErrUnexpectedEOF, "sequence exhausted")
	}
	out := make([]byte, n)
	copy(out, s.data[:n])
	s.data = s.data[n:]
	return out, nil
}

// Calls returns the sizes of every Draw call so far.
func (s *SequenceSource) Calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.calls...)
}

// FailingSource fails every draw.
type FailingSource struct{}

// Draw always fails with an entropy error.
func (FailingSource) Draw(n int) ([]byte, error) {
	return nil, errors.WrapEntropy(errors.New("getrandom: function not implemented"), "test source")
}

// WriteFile writes content under dir and returns the full path.
// Automatically fails the test on error.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}
