package combine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recordingAssembler writes a plain listing and keeps what it was given.
type recordingAssembler struct {
	doc     Document
	records []FileRecord
}

func (a *recordingAssembler) Render(w io.Writer, doc Document) error {
	a.doc = doc
	fmt.Fprintln(w, strings.Join(doc.Structure, "\n"))
	for record := range doc.Files {
		a.records = append(a.records, record)
		fmt.Fprintf(w, "## %s\n%s\n", record.Path, record.Content)
	}
	return nil
}

func lookupOf(a Assembler) AssemblerLookup {
	return func(string) (Assembler, error) { return a, nil }
}

var errUnsupported = errors.New("unsupported")

func TestRun(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	writeTree(t, root, map[string]string{
		".docignore":     "# build output\nbuild/\n*.log\n",
		"build/out.txt":  "out",
		"src/main.txt":   "main\x00body",
		"src/debug.log":  "log",
		"notes.md":       "# notes",
		"data.bin":       "\x00\x01\x02",
		"vendor/lib.xyz": "plain text",
	})
	output := filepath.Join(dir, "out", "report.txt")
	a := &recordingAssembler{}

	err := Run(Arguments{Directory: root, Output: output}, lookupOf(a), zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.Equal(t, "project", a.doc.Root)
	assert.Equal(t, []string{
		"project/",
		".docignore",
		"data.bin",
		"notes.md",
		"src/",
		"main.txt",
		"vendor/",
		"lib.xyz",
	}, a.doc.Structure)

	require.Len(t, a.records, 5)
	assert.Equal(t, FileRecord{Path: ".docignore", Classification: Text, Content: "# build output\nbuild/\n*.log\n"}, a.records[0])
	assert.Equal(t, FileRecord{Path: "data.bin", Classification: Binary, Content: BinaryPlaceholder}, a.records[1])
	assert.Equal(t, "notes.md", a.records[2].Path)
	assert.Equal(t, FileRecord{Path: "src/main.txt", Classification: Text, Content: "mainbody"}, a.records[3])
	assert.Equal(t, FileRecord{Path: "vendor/lib.xyz", Classification: Text, Content: "plain text"}, a.records[4])

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## src/main.txt\nmainbody\n")

	_, err = os.Stat(LockPath(output))
	assert.True(t, os.IsNotExist(err), "lock file should be removed")
}

func TestRun_ExtraPatternsAndExtensions(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	writeTree(t, root, map[string]string{
		"keep.go":  "package x\x00",
		"skip.tmp": "tmp",
	})
	global := filepath.Join(dir, "global.ignore")
	require.NoError(t, os.WriteFile(global, []byte("*.tmp\n"), 0o644))
	a := &recordingAssembler{}

	args := Arguments{
		Directory:        root,
		Output:           filepath.Join(dir, "out.txt"),
		GlobalIgnoreFile: global,
		IgnorePatterns:   []string{"nothing-*"},
		TextExtensions:   []string{".go"},
	}
	require.NoError(t, Run(args, lookupOf(a), zaptest.NewLogger(t)))

	require.Len(t, a.records, 1)
	assert.Equal(t, FileRecord{Path: "keep.go", Classification: Text, Content: "package x"}, a.records[0])
}

func TestRun_MissingRoot(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "report.txt")

	err := Run(Arguments{Directory: filepath.Join(dir, "missing"), Output: output}, lookupOf(&recordingAssembler{}), zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrRootNotFound)

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_RootIsAFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"file.txt": "x"})

	err := Run(Arguments{Directory: filepath.Join(dir, "file.txt"), Output: filepath.Join(dir, "r.txt")}, lookupOf(&recordingAssembler{}), nil)
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestRun_UnsupportedFormatCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "project")
	writeTree(t, root, map[string]string{"a.txt": "a"})
	output := filepath.Join(dir, "report.xyz")

	lookup := func(string) (Assembler, error) { return nil, errUnsupported }
	err := Run(Arguments{Directory: root, Output: output}, lookup, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, errUnsupported)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "project", entries[0].Name())
}

func TestRun_OutputInsideRootIsNotDocumented(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":      "a",
		"report.txt": "previous run",
	})
	a := &recordingAssembler{}

	require.NoError(t, Run(Arguments{Directory: root, Output: filepath.Join(root, "report.txt")}, lookupOf(a), zaptest.NewLogger(t)))

	assert.Equal(t, []string{filepath.Base(root) + "/", "a.txt"}, a.doc.Structure)
	require.Len(t, a.records, 1)
	assert.Equal(t, "a.txt", a.records[0].Path)
}

func TestWriteArtifact_Locked(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "report.txt")

	held := flock.New(LockPath(output))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer held.Unlock()

	err = WriteArtifact(output, zaptest.NewLogger(t), func(w io.Writer) error {
		t.Fatal("write must not run while locked")
		return nil
	})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestWriteArtifact_FailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "report.txt")
	boom := errors.New("boom")

	err := WriteArtifact(output, zaptest.NewLogger(t), func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "report.txt.lock", entries[0].Name())
}

func TestWriteArtifact_KeepsLockFile(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "report.txt")
	logger := zaptest.NewLogger(t)

	for _, body := range []string{"first", "second"} {
		require.NoError(t, WriteArtifact(output, logger, func(w io.Writer) error {
			_, err := io.WriteString(w, body)
			return err
		}))
		assert.FileExists(t, LockPath(output))
	}

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	// The lock is released even though its file remains.
	fl := flock.New(LockPath(output))
	locked, err := fl.TryLock()
	require.NoError(t, err)
	assert.True(t, locked)
	require.NoError(t, fl.Unlock())
}

func TestIgnoreFiles(t *testing.T) {
	root := filepath.Join("/", "work", "proj")
	assert.Equal(t, []string{filepath.Join(root, ".docignore")}, IgnoreFiles(Arguments{}, root))
	assert.Equal(t,
		[]string{filepath.Join(root, "custom.ignore"), "/etc/docwriter.ignore"},
		IgnoreFiles(Arguments{IgnoreFile: "custom.ignore", GlobalIgnoreFile: "/etc/docwriter.ignore"}, root))
}

func TestRootName(t *testing.T) {
	assert.Equal(t, "project", RootName(filepath.Join(t.TempDir(), "project")))
	assert.Equal(t, "", RootName(string(filepath.Separator)))

	lines, err := GenerateStructure(fstest.MapFS{"a.txt": file("a")}, RootName("/"), rules(), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "a.txt"}, lines)
}

func TestExcludeArtifact(t *testing.T) {
	root := t.TempDir()
	gi := ExcludeArtifact(rules("*.log"), root, filepath.Join(root, "out", "doc.pdf"))

	assert.True(t, gi.MatchesPath("out/doc.pdf"))
	assert.True(t, gi.MatchesPath("out/doc.pdf.lock"))
	assert.True(t, gi.MatchesPath("out/.doc.pdf.tmp-12345"))
	assert.True(t, gi.MatchesPath("x.log"))
	assert.False(t, gi.MatchesPath("doc.pdf"))
	assert.False(t, gi.MatchesPath("out/other.pdf"))

	outside := rules()
	assert.Same(t, outside, ExcludeArtifact(outside, root, filepath.Join(filepath.Dir(root), "doc.pdf")))
}
