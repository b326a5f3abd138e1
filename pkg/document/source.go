package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Source identifies where a template document originated so loaders can
// operate on files, in-memory payloads, or fs.FS entries without leaking
// implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile  SourceKind = "file"
	SourceKindBytes SourceKind = "bytes"
	SourceKindFS    SourceKind = "fs"
)

// fileSource identifies on-disk template documents.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// bytesSource names an in-memory payload, such as a test fixture.
type bytesSource struct {
	name string
}

func (s bytesSource) Location() string {
	return s.name
}

func (s bytesSource) Kind() SourceKind {
	return SourceKindBytes
}

// SourceFromBytes returns a Source naming an in-memory payload.
func SourceFromBytes(name string) Source {
	return bytesSource{name: name}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// Document wraps the raw template payload and its origin.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument constructs a Document wrapper while validating the inputs.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("document: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("document: raw document is empty")
	}

	clone := append([]byte(nil), raw...)
	return Document{source: src, raw: clone}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, raw []byte) Document {
	doc, err := NewDocument(src, raw)
	if err != nil {
		panic(err)
	}
	return doc
}

// ReadFile loads a document from disk.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("document: read %s: %w", path, err)
	}
	return NewDocument(SourceFromFile(path), data)
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a defensive copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}
