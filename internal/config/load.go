package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a config file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatForPath picks the syntax from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(os.DirFS(filepath.Dir(path)), filepath.Base(path), cfg); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFS reads name from fsys over the defaults and validates the result.
// Environment variables are not consulted.
func LoadFS(fsys fs.FS, name string) (*Config, error) {
	cfg := Default()
	if err := loadFile(fsys, name, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(fsys fs.FS, name string, cfg *Config) error {
	f, err := FormatForPath(name)
	if err != nil {
		return err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", name, err)
	}
	return Decode(bytes.NewReader(data), f, name, cfg)
}

// Decode reads settings in format f from r into cfg. Fields absent from
// the input keep their value; unknown keys are rejected.
func Decode(r io.Reader, f Format, source string, cfg *Config) error {
	switch f {
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return tomlError(source, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return yamlError(source, err)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, f)
	}
	return nil
}

// Encode writes cfg in format f.
func Encode(w io.Writer, f Format, cfg *Config) error {
	switch f {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %d", ErrUnsupportedFormat, f)
}

func tomlError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	var de *toml.DecodeError
	if errors.As(err, &de) {
		pe.Line, pe.Column = de.Position()
	}
	var sme *toml.StrictMissingError
	if errors.As(err, &sme) {
		pe.Message = strings.TrimSpace(sme.String())
		if len(sme.Errors) > 0 {
			pe.Line, pe.Column = sme.Errors[0].Position()
		}
	}
	return pe
}

func yamlError(source string, err error) error {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		pe.Line = line
	}
	var te *yaml.TypeError
	if errors.As(err, &te) && len(te.Errors) > 0 {
		pe.Message = strings.Join(te.Errors, "; ")
		if _, scanErr := fmt.Sscanf(te.Errors[0], "line %d:", &line); scanErr == nil {
			pe.Line = line
		}
	}
	return pe
}
