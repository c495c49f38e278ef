package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/randconst/errors"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version (if tagged)
	Version = "dev"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	if i.Version != "dev" {
		return fmt.Sprintf("randconst %s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildTime)
	}
	return fmt.Sprintf("randconst dev (commit %s, built %s)", i.CommitHash, i.BuildTime)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// IsDev reports whether the binary was built without a version tag.
func (i Info) IsDev() bool {
	return i.Version == "" || i.Version == "dev"
}

// CheckRequired verifies this binary against a required_version constraint
// such as ">= 0.4, < 1". Dev builds satisfy every constraint.
func CheckRequired(constraint string) error {
	return Get().Satisfies(constraint)
}

// Satisfies checks i against constraint. An empty constraint always passes.
func (i Info) Satisfies(constraint string) error {
	if constraint == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "invalid required_version constraint %q", constraint)
	}
	if i.IsDev() {
		return nil
	}

	v, err := semver.NewVersion(i.Version)
	if err != nil {
		return errors.Wrapf(err, "binary version %q is not a semantic version", i.Version)
	}
	if !c.Check(v) {
		return errors.WithHintf(
			errors.Newf("randconst %s does not satisfy required_version %q", v, constraint),
			"install a matching release or relax required_version in %s", "randconst.toml")
	}
	return nil
}
