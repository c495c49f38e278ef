package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
	colorDim   = "\x1b[38;5;245m"
	colorName  = "\x1b[38;5;108m"
	colorWarn  = "\x1b[38;5;214m"
	colorError = "\x1b[38;5;167m"
	colorKey   = "\x1b[38;5;109m"
)

var bufferPool = buffer.NewPool()

// minimalEncoder implements a compact console encoder.
// Format: "13:04:35  WARN  generator  Marker calls consumed  file=keys.go count=2"
//
// Context fields added with With are kept in the embedded map encoder and
// printed (sorted) before the entry's own fields.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
	color bool
}

func newMinimalEncoder(color bool) *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder(), color: color}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := newMinimalEncoder(enc.color)
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return clone
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	final := bufferPool.Get()

	final.AppendString(enc.paint(colorDim, ent.Time.Format("15:04:05")))

	// Level: only shown when it is not INFO
	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(enc.level(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(enc.paint(colorName, ent.LoggerName))
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	pairs := enc.contextPairs()
	for _, f := range fields {
		pairs = append(pairs, fieldPairs(f)...)
	}
	if len(pairs) > 0 {
		final.AppendString("  ")
		final.AppendString(strings.Join(pairs, " "))
	}

	final.AppendString("\n")
	return final, nil
}

// contextPairs renders the With fields sorted by key.
func (enc *minimalEncoder) contextPairs() []string {
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, enc.pair(k, enc.Fields[k]))
	}
	return pairs
}

// fieldPairs renders one field. Every field is kept; verbose error
// renderings (stack traces) are left to the JSON encoder.
func fieldPairs(f zapcore.Field) []string {
	m := zapcore.NewMapObjectEncoder()
	f.AddTo(m)

	keys := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		if strings.HasSuffix(k, "Verbose") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, m.Fields[k]))
	}
	return pairs
}

func (enc *minimalEncoder) pair(key string, value interface{}) string {
	return enc.paint(colorKey, key) + "=" + fmt.Sprintf("%v", value)
}

func (enc *minimalEncoder) level(level zapcore.Level) string {
	switch level {
	case zapcore.WarnLevel:
		return enc.paint(colorBold+colorWarn, "WARN")
	case zapcore.DebugLevel:
		return enc.paint(colorDim, "DEBUG")
	default:
		return enc.paint(colorBold+colorError, level.CapitalString())
	}
}

func (enc *minimalEncoder) paint(color, s string) string {
	if !enc.color {
		return s
	}
	return color + s + colorReset
}
