// Package entropy supplies random bytes from the operating system's secure
// random facility.
//
// There is no retry and no fallback: a failed draw aborts the run.
package entropy

import (
	"crypto/rand"
	"fmt"
	"io"

	"go.uber.org/atomic"

	"github.com/teranos/randconst/errors"
)

// Source draws n uniformly random bytes.
type Source interface {
	Draw(n int) ([]byte, error)
}

// System reads from crypto/rand, which is backed by getrandom(2),
// /dev/urandom, BCryptGenRandom or arc4random depending on the platform.
// It is safe for concurrent use.
type System struct {
	r io.Reader
}

// NewSystem returns the operating system source.
func NewSystem() *System {
	return &System{r: rand.Reader}
}

// Draw returns exactly n bytes or an error marked with errors.ErrEntropy.
func (s *System) Draw(n int) ([]byte, error) {
	return readFull(s.r, n)
}

// FromReader adapts an io.Reader. Intended for tests that need a failing or
// exhausted reader; production code uses NewSystem.
func FromReader(r io.Reader) Source {
	return &System{r: r}
}

func readFull(r io.Reader, n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.AssertionFailedf("negative entropy request: %d", n)
	}
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.WrapEntropy(err, fmt.Sprintf("failed to draw %d random bytes", n))
	}
	return buf, nil
}

// Counter wraps a Source and counts draws and bytes.
// Safe for concurrent use.
type Counter struct {
	src   Source
	draws atomic.Int64
	bytes atomic.Int64
}

// NewCounter wraps src.
func NewCounter(src Source) *Counter {
	return &Counter{src: src}
}

// Draw forwards to the wrapped source. Zero-length draws are not forwarded
// and not counted.
func (c *Counter) Draw(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	buf, err := c.src.Draw(n)
	if err != nil {
		return nil, err
	}
	c.draws.Inc()
	c.bytes.Add(int64(n))
	return buf, nil
}

// Draws returns the number of successful non-empty draws.
func (c *Counter) Draws() int64 { return c.draws.Load() }

// Bytes returns the number of bytes drawn.
func (c *Counter) Bytes() int64 { return c.bytes.Load() }
