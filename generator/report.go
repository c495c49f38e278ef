package generator

import (
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/teranos/randconst/config"
	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/splice"
)

// Report summarizes a run. It never holds drawn values.
type Report struct {
	RunID      string       `yaml:"run_id" json:"run_id"`
	StartedAt  time.Time    `yaml:"started_at" json:"started_at"`
	GOARCH     string       `yaml:"goarch" json:"goarch"`
	Files      []FileReport `yaml:"files" json:"files"`
	Draws      int64        `yaml:"draws" json:"draws"`
	Bytes      int64        `yaml:"bytes" json:"bytes"`
	DurationMS int64        `yaml:"duration_ms" json:"duration_ms"`
}

// FileReport describes one generated template.
type FileReport struct {
	Template        string         `yaml:"template" json:"template"`
	Output          string         `yaml:"output" json:"output"`
	Splices         []SpliceReport `yaml:"splices" json:"splices"`
	MarkersConsumed int            `yaml:"markers_consumed,omitempty" json:"markers_consumed,omitempty"`

	content []byte // dry runs
}

// SpliceReport locates one replaced request.
type SpliceReport struct {
	Line    int    `yaml:"line" json:"line"`
	Column  int    `yaml:"column" json:"column"`
	Form    string `yaml:"form" json:"form"`
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Request string `yaml:"request" json:"request"`
}

func newReport(goarch string) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		GOARCH:    goarch,
	}
}

func (r *Report) finish(draws, bytes int64) {
	r.Draws = draws
	r.Bytes = bytes
	r.DurationMS = time.Since(r.StartedAt).Milliseconds()
}

func newFileReport(template, output string, res *splice.Result) *FileReport {
	fr := &FileReport{
		Template:        template,
		Output:          output,
		MarkersConsumed: res.MarkersConsumed,
	}
	for _, s := range res.Splices {
		fr.Splices = append(fr.Splices, SpliceReport{
			Line:    s.Pos.Line,
			Column:  s.Pos.Column,
			Form:    string(s.Form),
			Name:    s.Name,
			Request: s.Request.String(),
		})
	}
	return fr
}

// Splices counts the splices of every file.
func (r *Report) Splices() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Splices)
	}
	return n
}

// Outputs lists the files written.
func (r *Report) Outputs() []string {
	out := make([]string, len(r.Files))
	for i, f := range r.Files {
		out[i] = f.Output
	}
	return out
}

const manifestHeader = "# randconst run manifest. Drawn values are never recorded.\n"

// WriteManifest writes the report as YAML.
func (r *Report) WriteManifest(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest")
	}
	data = append([]byte(manifestHeader), data...)
	if err := os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write manifest %s", path)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %s", path)
	}
	return &r, nil
}
