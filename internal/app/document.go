package app

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/piecetable/internal/engine/buffer"
	"github.com/dshills/piecetable/internal/engine/diff"
)

// Document is a buffer together with the file it came from.
type Document struct {
	// Path is the absolute file path (empty for scratch buffers).
	Path string

	// Name is the display name (filename or "Untitled").
	Name string

	// Buffer holds the text.
	Buffer *buffer.Buffer

	// saved is the buffer revision last written to or read from disk, and
	// base the text at that revision.
	saved buffer.RevisionID
	base  *buffer.Snapshot

	// perm is applied when the file is written.
	perm fs.FileMode

	// disk is the file as last read or written; exists is false when the
	// file has never been on disk.
	disk struct {
		exists  bool
		modTime time.Time
		size    int64
	}
}

// NewDocument creates a document for path holding content.
func NewDocument(path, content string, opts ...buffer.Option) (*Document, error) {
	buf, err := buffer.NewBufferFromString(content, opts...)
	if err != nil {
		return nil, &FileError{Op: "load", Path: path, Err: err}
	}

	name := filepath.Base(path)
	if path == "" {
		name = "Untitled"
	}
	doc := &Document{
		Path:   path,
		Name:   name,
		Buffer: buf,
		perm:   0o644,
	}
	doc.markSaved(buf.Snapshot())
	return doc, nil
}

// NewScratchDocument creates a new scratch (unsaved) document.
func NewScratchDocument(opts ...buffer.Option) *Document {
	buf := buffer.NewBuffer(opts...)
	doc := &Document{
		Name:   "Untitled",
		Buffer: buf,
		perm:   0o644,
	}
	doc.markSaved(buf.Snapshot())
	return doc
}

func (d *Document) markSaved(snap *buffer.Snapshot) {
	d.saved = snap.RevisionID()
	d.base = snap
}

// OpenDocument reads the file at path. A file that doesn't exist yet opens
// as an empty document that will be created on save.
func OpenDocument(path string, opts ...buffer.Option) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &FileError{Op: "open", Path: path, Err: err}
	}

	content, err := os.ReadFile(absPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, &FileError{Op: "open", Path: absPath, Err: err}
	}

	doc, err := NewDocument(absPath, string(content), opts...)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(absPath); err == nil {
		doc.perm = info.Mode().Perm()
		doc.recordDisk(info)
	}
	return doc, nil
}

func (d *Document) recordDisk(info fs.FileInfo) {
	d.disk.exists = true
	d.disk.modTime = info.ModTime()
	d.disk.size = info.Size()
}

// ChangedOnDisk reports whether the file differs from the version this
// document last read or wrote, judged by modification time and size.
func (d *Document) ChangedOnDisk() (bool, error) {
	if d.IsScratch() {
		return false, nil
	}
	info, err := os.Stat(d.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return d.disk.exists, nil
	}
	if err != nil {
		return false, &FileError{Op: "stat", Path: d.Path, Err: err}
	}
	if !d.disk.exists {
		return true, nil
	}
	return !info.ModTime().Equal(d.disk.modTime) || info.Size() != d.disk.size, nil
}

// IsModified returns true if the document has changed since it was loaded
// or last saved.
func (d *Document) IsModified() bool {
	return d.Buffer.RevisionID() != d.saved
}

// IsScratch returns true if this is a scratch buffer (no file path).
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// Content returns the full document content.
func (d *Document) Content() string {
	return d.Buffer.Text()
}

// Diff compares the document with the version last read or written.
func (d *Document) Diff(opts diff.Options) (diff.Result, error) {
	return diff.Sources(d.base, d.Buffer.Snapshot(), opts)
}

// Save writes the document back to its file.
func (d *Document) Save() error {
	if d.IsScratch() {
		return &FileError{Op: "save", Err: ErrNoFilePath}
	}
	return d.SaveAs(d.Path)
}

// SaveAs writes the document to path and makes path its file.
// The file is replaced atomically: the content goes to a temporary file in
// the same directory, which is then renamed over the target.
func (d *Document) SaveAs(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}

	snap := d.Buffer.Snapshot()
	if err := writeFileAtomic(absPath, snap, d.perm); err != nil {
		return &FileError{Op: "save", Path: absPath, Err: err}
	}

	d.Path = absPath
	d.Name = filepath.Base(absPath)
	d.markSaved(snap)
	if info, err := os.Stat(absPath); err == nil {
		d.recordDisk(info)
	}
	return nil
}

func writeFileAtomic(path string, snap *buffer.Snapshot, perm fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if _, err = snap.WriteTo(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
