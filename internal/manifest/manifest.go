package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by Load for a file extension it cannot read.
var ErrUnsupportedFormat = errors.New("unsupported manifest format")

// Manifest is an ordered list of source declarations.
type Manifest struct {
	Sources []Decl `yaml:"sources" json:"sources" validate:"required,min=1,dive"`
}

// Decl declares one source.
type Decl struct {
	// ID names the source. It cannot be a reserved tag or contain a comma.
	ID string `yaml:"id" json:"id" validate:"required,sourceid"`

	// Data is the payload of a raw source. Numbers must be integers.
	Data any `yaml:"data,omitempty" json:"data,omitempty"`

	// Sources lists the selector groups of a derived source.
	Sources []string `yaml:"sources,omitempty" json:"sources,omitempty" validate:"omitempty,dive,required"`

	// Derive names the transform of a derived source.
	Derive string `yaml:"derive,omitempty" json:"derive,omitempty"`

	// Tags replaces the default tags when present.
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty" validate:"omitempty,dive,required,tag"`
}

// IsDerived reports whether the declaration describes a derived source.
func (d Decl) IsDerived() bool {
	return d.Derive != ""
}

// Load reads a manifest file, choosing the decoder by extension:
// .yaml, .yml and .json are read as YAML, .cue as CUE.
// The manifest is decoded but not validated.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(data, path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ParseYAML decodes a YAML manifest. Unknown fields are rejected.
func ParseYAML(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse YAML manifest: %w", err)
	}
	return &m, nil
}

// ParseCUE evaluates a CUE manifest and decodes its concrete value.
// filename is used in error positions only.
func ParseCUE(data []byte, filename string) (*Manifest, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compile CUE manifest: %w", err)
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE manifest is not concrete: %w", err)
	}

	raw, err := value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("export CUE manifest: %w", err)
	}

	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode CUE manifest: %w", err)
	}
	return &m, nil
}
