// Package file loads meet snapshots from YAML or JSON files on disk.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/okian/swimchamps/internal/domain/model"
)

// Sentinel kinds for file errors.
var (
	ErrNoMatches       = errors.New("no snapshot files match")
	ErrUnsupportedType = errors.New("unsupported snapshot file type")
	ErrDecode          = errors.New("decode snapshot file")
	ErrAmbiguousMeet   = errors.New("records span several meets")
)

// Document is the on-disk shape of one meet snapshot.
type Document struct {
	Meet    string                    `json:"meet" yaml:"meet"`
	Name    string                    `json:"name,omitempty" yaml:"name,omitempty"`
	Records []model.PerformanceRecord `json:"records" yaml:"records"`

	// Path is the file the document was read from.
	Path string `json:"-" yaml:"-"`
}

// Load reads every file matching pattern. Patterns support ** via doublestar;
// a plain path loads one file. Documents are returned in path order, and a
// document without a meet id takes its file name.
func Load(ctx context.Context, pattern string) ([]Document, error) {
	base, glob := doublestar.SplitPattern(filepath.ToSlash(pattern))
	matches, err := doublestar.Glob(os.DirFS(base), glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("evaluate pattern %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, pattern)
	}
	sort.Strings(matches)

	docs := make([]Document, 0, len(matches))
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := path.Join(base, m)
		doc, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// ReadFile decodes one snapshot file by extension.
func ReadFile(p string) (Document, error) {
	f, err := os.Open(filepath.FromSlash(p))
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	doc, err := Decode(f, path.Ext(p))
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", p, err)
	}
	doc.Path = p
	if doc.Meet == "" {
		doc.Meet = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}
	return doc, nil
}

// Decode reads a document in the format named by ext (".yaml", ".yml" or ".json").
// Unknown fields are rejected.
func Decode(r io.Reader, ext string) (Document, error) {
	var doc Document
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	case ".json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return doc, nil
}

// Encode writes doc in the format named by ext.
func Encode(w io.Writer, doc Document, ext string) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case ".json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
}

// WriteFile stores doc at p, choosing the format by extension.
func WriteFile(p string, doc Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, filepath.Ext(p)); err != nil {
		return err
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil { //nolint:gosec // snapshot files are not secrets
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// Records merges the records of docs belonging to meet. An empty meet selects
// the only meet present and fails with ErrAmbiguousMeet if there are several.
func Records(docs []Document, meet string) (string, []model.PerformanceRecord, error) {
	if meet == "" {
		for _, d := range docs {
			switch {
			case meet == "":
				meet = d.Meet
			case d.Meet != meet:
				return "", nil, fmt.Errorf("%w: %q and %q; choose one", ErrAmbiguousMeet, meet, d.Meet)
			}
		}
	}
	var out []model.PerformanceRecord
	for _, d := range docs {
		if d.Meet == meet {
			out = append(out, d.Records...)
		}
	}
	if len(out) == 0 {
		return meet, nil, fmt.Errorf("%w: meet %q", fs.ErrNotExist, meet)
	}
	return meet, out, nil
}
