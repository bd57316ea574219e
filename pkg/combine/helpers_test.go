package combine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"docwriter/pkg/ignore"

	"github.com/stretchr/testify/require"
)

// failingFS returns err for Open calls on the listed paths.
type failingFS struct {
	fstest.MapFS
	fail map[string]error
}

func (f failingFS) Open(name string) (fs.File, error) {
	if err, ok := f.fail[name]; ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return f.MapFS.Open(name)
}

func (f failingFS) ReadFile(name string) ([]byte, error) {
	if err, ok := f.fail[name]; ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return f.MapFS.ReadFile(name)
}

var errDenied = errors.New("permission denied")

func file(content string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(content), Mode: 0o644}
}

func rules(lines ...string) *ignore.Rules {
	r := ignore.New(nil)
	r.CompileIgnoreLines(lines...)
	return r
}

// writeTree creates files below dir; keys are slash-separated relative paths.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}
