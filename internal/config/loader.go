package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source is where an effective value was set.
type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

// LoadResult is the effective config plus the provenance of each key.
type LoadResult struct {
	Config *Config
	// Sources maps a key path such as "panel.width_cm" to the file that set
	// it last. Keys left at their default are absent.
	Sources map[string]Source
	// Files lists every file read, each include before its includer.
	Files []string
}

// keyPaths are the keys a config file can set. Explain accepts the same
// paths.
var keyPaths = []string{
	"display",
	"width",
	"height",
	"render_dir",
	"display_binary",
	"terminate_timeout",
	"keepalive_interval",
	"panel",
	"panel.width_cm",
	"panel.height_cm",
	"log_level",
	"window_title",
	"hotkeys",
	"hotkeys.next_display",
	"hotkeys.test_pattern",
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "dreamoc", "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load with provenance, for config explain.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and the files it includes. A missing file yields
// the defaults. Validation errors carry the file and line of the offending
// key.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &fileLoader{
		sources: make(map[string]Source),
		read:    make(map[string]bool),
	}

	var raw RawConfig
	if _, err := os.Stat(path); err == nil {
		if raw, err = l.load(path, nil); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := BuildEffectiveConfig(raw)
	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			if src, ok := l.sources[verr.Path]; ok {
				verr.Source = src
			}
		}
		return nil, err
	}

	return &LoadResult{
		Config:  cfg,
		Sources: l.sources,
		Files:   l.files,
	}, nil
}

// fileLoader reads one config file tree. Each file is read at most once.
type fileLoader struct {
	sources map[string]Source
	files   []string
	read    map[string]bool
}

// load returns the settings of path layered over those of its includes.
// chain holds the files whose includes are being resolved.
func (l *fileLoader) load(path string, chain []string) (RawConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return RawConfig{}, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if slices.Contains(chain, abs) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(chain, " -> "), abs)
	}
	if l.read[abs] {
		return RawConfig{}, nil
	}
	l.read[abs] = true

	data, err := os.ReadFile(abs)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", abs, err)
	}
	own, doc, err := parseFile(data)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", abs, err)
	}

	var merged RawConfig
	for _, include := range own.Include {
		incPath, err := resolveInclude(abs, include)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s: include %q: %w", abs, include, err)
		}
		incRaw, err := l.load(incPath, append(chain, abs))
		if err != nil {
			return RawConfig{}, err
		}
		merged = merged.merge(incRaw)
	}

	for _, key := range keyPaths {
		if node := lookupKey(doc, key); node != nil {
			l.sources[key] = Source{Kind: SourceFile, File: abs, Line: node.Line, Column: node.Column}
		}
	}
	l.files = append(l.files, abs)
	return merged.merge(own), nil
}

// parseFile decodes one file, rejecting unknown keys, and also returns its
// node tree for line lookups.
func parseFile(data []byte) (RawConfig, *yaml.Node, error) {
	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return RawConfig{}, nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return raw, &doc, nil
}

// lookupKey returns the value node at a dotted key path, or nil.
func lookupKey(doc *yaml.Node, key string) *yaml.Node {
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for _, name := range strings.Split(key, ".") {
		if node.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == name {
				next = node.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

// resolveInclude locates an included file relative to the including one.
func resolveInclude(from, include string) (string, error) {
	if strings.TrimSpace(include) == "" {
		return "", errors.New("path is empty")
	}
	path, err := expandHome(include)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", errors.New("is a directory, include a file")
	}
	return path, nil
}
