package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the serialization of an artifact body.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a file extension or format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported artifact format: %q", s)
	}
}

// Source reads raw artifact bodies by name.
type Source interface {
	// Read returns the body and format of the named artifact, or an error
	// wrapping ErrNotFound when it does not exist.
	Read(name string) ([]byte, Format, error)
	String() string
}

var extensions = []string{".json", ".yaml", ".yml"}

// DirSource reads artifacts stored as <name>.json, <name>.yaml or
// <name>.yml files.
type DirSource struct {
	fsys  fs.FS
	label string
}

// NewDirSource returns a source reading from the given directory.
func NewDirSource(dir string) *DirSource {
	return &DirSource{fsys: os.DirFS(dir), label: dir}
}

// NewFSSource returns a source reading from fsys.
func NewFSSource(fsys fs.FS, label string) *DirSource {
	return &DirSource{fsys: fsys, label: label}
}

func (s *DirSource) String() string {
	return s.label
}

func (s *DirSource) Read(name string) ([]byte, Format, error) {
	for _, ext := range extensions {
		b, err := fs.ReadFile(s.fsys, name+ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("reading %s%s: %w", name, ext, err)
		}
		f, _ := ParseFormat(ext)
		return b, f, nil
	}
	return nil, "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

func decode(b []byte, f Format, v any) error {
	switch f {
	case FormatJSON:
		d := json.NewDecoder(bytes.NewReader(b))
		d.DisallowUnknownFields()
		if err := d.Decode(v); err != nil {
			return fmt.Errorf("decoding json: %w", err)
		}
		if _, err := d.Token(); !errors.Is(err, io.EOF) {
			return errors.New("decoding json: unexpected data after top-level value")
		}
	case FormatYAML:
		d := yaml.NewDecoder(bytes.NewReader(b))
		d.KnownFields(true)
		if err := d.Decode(v); err != nil {
			return fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported artifact format: %q", f)
	}
	return nil
}
