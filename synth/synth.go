package synth

import (
	"encoding/binary"
	"strings"

	"github.com/teranos/randconst/entropy"
	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/grammar"
)

// Synthesizer draws entropy and decodes it into values.
// It keeps no state between calls; identical requests are drawn again.
type Synthesizer struct {
	src   entropy.Source
	order binary.ByteOrder
}

// New returns a synthesizer over src decoding in order.
func New(src entropy.Source, order binary.ByteOrder) *Synthesizer {
	if order == nil {
		order = binary.NativeEndian
	}
	return &Synthesizer{src: src, order: order}
}

// Generate draws one value for a scalar request, or Len values in order for
// an array request. An empty array draws nothing.
func (s *Synthesizer) Generate(req grammar.Request) ([]Value, error) {
	n := req.Slots()
	values := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		buf, err := s.src.Draw(req.Type.Width)
		if err != nil {
			return nil, err
		}
		v, err := Synthesize(req.Type, buf, s.order)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// ParseByteOrder maps the config spelling to a byte order.
func ParseByteOrder(name string) (binary.ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "native":
		return binary.NativeEndian, nil
	case "little":
		return binary.LittleEndian, nil
	case "big":
		return binary.BigEndian, nil
	default:
		return nil, errors.Newf("unknown byte order %q (supported: native, little, big)", name)
	}
}
