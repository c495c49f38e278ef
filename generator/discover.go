package generator

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/randconst/errors"
	"github.com/teranos/randconst/splice"
)

// Discover expands paths into the template files to process.
//
//	keys.go    a file, taken as given (splice rejects it if it is not a template)
//	./pkg      the templates directly inside a directory
//	./...      the templates of a directory tree (a bare ... means ./...)
//
// Trees skip vendor, testdata, hidden and _-prefixed directories. Files
// ending in suffix are outputs and never selected from a directory.
func Discover(paths []string, tag, suffix string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		slashed := filepath.ToSlash(p)
		if slashed == "..." {
			slashed = "./..."
		}
		if root, ok := strings.CutSuffix(slashed, "/..."); ok {
			if root == "" {
				return nil, errors.WithHint(
					errors.Newf("refusing to walk the filesystem root: %s", p),
					"name a directory, e.g. ./...")
			}
			found, err := walkTree(filepath.FromSlash(root), tag, suffix)
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read %s", p)
		}
		if !info.IsDir() {
			if filepath.Ext(p) != ".go" {
				return nil, errors.Newf("%s is not a Go file", p)
			}
			add(p)
			continue
		}

		found, err := templatesIn(p, tag, suffix)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// walkTree collects the templates below root.
func walkTree(root, tag, suffix string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		found, err := templatesIn(path, tag, suffix)
		if err != nil {
			return err
		}
		files = append(files, found...)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", root)
	}
	return files, nil
}

// templatesIn returns the templates directly inside dir.
func templatesIn(dir, tag, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".go" || isOutput(name, suffix) {
			continue
		}
		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		ok, err := splice.IsTemplate(path, src, tag)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, path)
		}
	}
	return files, nil
}

// skipDir matches the directories the go tool ignores in ./... patterns.
func skipDir(name string) bool {
	return name == "vendor" || name == "testdata" ||
		strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// OutputPath names the companion of template. Test templates keep the
// _test.go ending so their companions stay test files.
//
//	keys.go      -> keys_randconst.go
//	keys_test.go -> keys_randconst_test.go
func OutputPath(template, suffix string) string {
	if base, ok := strings.CutSuffix(template, "_test.go"); ok {
		return base + strings.TrimSuffix(suffix, ".go") + "_test.go"
	}
	return strings.TrimSuffix(template, ".go") + suffix
}

// isOutput reports whether name looks like a companion.
func isOutput(name, suffix string) bool {
	return strings.HasSuffix(name, suffix) ||
		strings.HasSuffix(name, strings.TrimSuffix(suffix, ".go")+"_test.go")
}
