package grammar

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/randconst/errors"
)

// Kind categorizes diagnostics for programmatic handling
type Kind string

const (
	KindMalformed            Kind = "malformed"             // request does not follow the grammar
	KindUnsupportedType      Kind = "unsupported-type"      // type outside the integer vocabulary
	KindUnsupportedConstruct Kind = "unsupported-construct" // directive/marker in a place that cannot hold a literal
)

// sentinel returns the errors sentinel matching the kind.
func (k Kind) sentinel() error {
	switch k {
	case KindUnsupportedType:
		return errors.ErrUnsupportedType
	case KindUnsupportedConstruct:
		return errors.ErrUnsupportedConstruct
	default:
		return errors.ErrMalformedRequest
	}
}

// ErrorContext selects the rendering of a diagnostic
type ErrorContext int

const (
	ErrorContextTerminal ErrorContext = iota // colored, multi-line
	ErrorContextPlain                        // file:line:col: message
)

// Diagnostic is a build-time error pinned to the source construct that caused it.
type Diagnostic struct {
	Kind        Kind
	Message     string
	Pos         token.Position // invalid when the request did not come from a file
	Snippet     string         // offending source text (optional)
	Suggestions []string
}

// NewDiagnostic creates a diagnostic with the given kind and message.
func NewDiagnostic(kind Kind, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements error with the plain rendering, which is what build logs expect.
func (d *Diagnostic) Error() string {
	return d.Format(ErrorContextPlain)
}

// Unwrap makes errors.Is match the sentinel of the diagnostic kind.
func (d *Diagnostic) Unwrap() error {
	return d.Kind.sentinel()
}

// Format renders the diagnostic for the given context.
func (d *Diagnostic) Format(ctx ErrorContext) string {
	if ctx == ErrorContextTerminal {
		return d.formatTerminal()
	}
	return d.formatPlain()
}

func (d *Diagnostic) formatPlain() string {
	msg := d.Message
	if d.Pos.IsValid() {
		msg = d.Pos.String() + ": " + msg
	}
	if d.Snippet != "" {
		msg += fmt.Sprintf(" (in %q)", d.Snippet)
	}
	if len(d.Suggestions) > 0 {
		msg += ". Suggestions: " + strings.Join(d.Suggestions, ", ")
	}
	return msg
}

func (d *Diagnostic) formatTerminal() string {
	var sb strings.Builder
	if d.Pos.IsValid() {
		sb.WriteString(pterm.Bold.Sprint(d.Pos.String()))
		sb.WriteString(": ")
	}
	sb.WriteString(pterm.Red(d.Message))

	if d.Snippet != "" {
		sb.WriteString(fmt.Sprintf("\n  %s %s", pterm.Yellow("Source:"), d.Snippet))
	}
	if len(d.Suggestions) > 0 {
		sb.WriteString(fmt.Sprintf("\n  %s", pterm.Green("Suggestions:")))
		for _, s := range d.Suggestions {
			sb.WriteString(fmt.Sprintf("\n    • %s", s))
		}
	}
	return sb.String()
}

// At pins the diagnostic to a source position.
func (d *Diagnostic) At(pos token.Position) *Diagnostic {
	d.Pos = pos
	return d
}

// WithSnippet records the offending source text.
func (d *Diagnostic) WithSnippet(src string) *Diagnostic {
	d.Snippet = src
	return d
}

// WithSuggestion adds a suggestion for fixing the error.
func (d *Diagnostic) WithSuggestion(s string) *Diagnostic {
	d.Suggestions = append(d.Suggestions, s)
	return d
}

// Diagnostics collects every diagnostic of one file. A file with any
// diagnostic produces no output.
type Diagnostics []*Diagnostic

// Error joins the plain renderings, one per line.
func (ds Diagnostics) Error() string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes each diagnostic to errors.Is/As.
func (ds Diagnostics) Unwrap() []error {
	out := make([]error, len(ds))
	for i, d := range ds {
		out[i] = d
	}
	return out
}

// Err returns nil for an empty list.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}

// Format renders every diagnostic for the given context.
func (ds Diagnostics) Format(ctx ErrorContext) string {
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.Format(ctx)
	}
	return strings.Join(lines, "\n")
}
