// Package config loads senseiharvest settings from YAML.
//
// Settings come from, in increasing priority: Default(), the config file,
// and the file's ".local" sibling (senseiharvest.local.yaml next to
// senseiharvest.yaml). Command-line flags are applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "senseiharvest.yaml"

type Config struct {
	BaseURL    string     `yaml:"base_url"`
	OutputDir  string     `yaml:"output_dir"`
	HTTP       HTTP       `yaml:"http"`
	Harvest    Harvest    `yaml:"harvest"`
	Vocabulary Vocabulary `yaml:"vocabulary"`
	Grammar    Grammar    `yaml:"grammar"`
	Output     Output     `yaml:"output"`
	Checkpoint Checkpoint `yaml:"checkpoint"`
}

type HTTP struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type Harvest struct {
	Levels              []string      `yaml:"levels"`
	Kinds               []string      `yaml:"kinds"`
	MaxPages            int           `yaml:"max_pages"`
	TransientRetries    int           `yaml:"transient_retries"`
	RetryBackoff        time.Duration `yaml:"retry_backoff"`
	AcceptTruncated     bool          `yaml:"accept_truncated"`
	Workers             int           `yaml:"workers"`
	ParallelCollections int           `yaml:"parallel_collections"`
	MaxCandidates       int           `yaml:"max_candidates"`
	// Seed makes example-sentence picks reproducible. 0 is random.
	Seed uint64 `yaml:"seed"`
}

type Vocabulary struct {
	// Irregular maps a term to alternate detail-page spellings.
	Irregular map[string][]string `yaml:"irregular"`
}

type Grammar struct {
	// NotesSelector enables Markdown notes from that element of the
	// grammar detail page.
	NotesSelector string `yaml:"notes_selector"`
	NotesMaxRunes int    `yaml:"notes_max_runes"`
}

type Output struct {
	Formats []string `yaml:"formats"`
	PDFFont string   `yaml:"pdf_font"`
}

type Checkpoint struct {
	// Path of the SQLite checkpoint database. Empty disables it.
	Path string `yaml:"path"`
}

// Default returns the built-in settings.
func Default() Config {
	levels := make([]string, len(core.Levels))
	for i, l := range core.Levels {
		levels[i] = string(l)
	}
	return Config{
		BaseURL:   "https://jlptsensei.com",
		OutputDir: "data",
		HTTP: HTTP{
			Timeout: 30 * time.Second,
		},
		Harvest: Harvest{
			Levels:              levels,
			Kinds:               []string{string(core.Vocabulary), string(core.Grammar)},
			MaxPages:            200,
			TransientRetries:    2,
			RetryBackoff:        2 * time.Second,
			Workers:             1,
			ParallelCollections: 1,
			MaxCandidates:       8,
		},
		Vocabulary: Vocabulary{
			Irregular: map[string][]string{"晩ご飯": {"晩御飯"}},
		},
		Grammar: Grammar{
			NotesMaxRunes: 4000,
		},
	}
}

// Load reads path over the defaults. Keys present in a file replace the
// default even when set to a zero value. An empty path tries DefaultFile
// and silently falls back to the defaults when it does not exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	found, err := decodeLayered(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}
	if !found && explicit {
		return Config{}, fmt.Errorf("loading %s: %w", path, os.ErrNotExist)
	}
	if err := cfg.Validate(); err != nil {
		if !found {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// decodeLayered decodes name and then name.local.ext onto out, so each
// layer overrides only the keys it sets. Maps are merged key by key.
func decodeLayered(name string, out *Config) (bool, error) {
	found, err := decodeFile(name, out)
	if err != nil {
		return false, err
	}

	ext := filepath.Ext(name)
	localPath := strings.TrimSuffix(name, ext) + ".local" + ext
	ok, err := decodeFile(localPath, out)
	if err != nil {
		return false, err
	}
	if ok {
		slog.Info("merging config with local overrides", "local", localPath)
	}
	return found || ok, nil
}

func decodeFile(path string, out *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return true, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	}
	if _, err := c.ParsedLevels(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.ParsedKinds(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http.timeout must be positive"))
	}
	if c.Harvest.MaxPages < 1 {
		errs = append(errs, errors.New("harvest.max_pages must be at least 1"))
	}
	if c.Harvest.TransientRetries < 0 {
		errs = append(errs, errors.New("harvest.transient_retries must not be negative"))
	}
	if c.Harvest.Workers < 1 {
		errs = append(errs, errors.New("harvest.workers must be at least 1"))
	}
	if c.Harvest.ParallelCollections < 1 {
		errs = append(errs, errors.New("harvest.parallel_collections must be at least 1"))
	}
	if c.Harvest.MaxCandidates < 1 {
		errs = append(errs, errors.New("harvest.max_candidates must be at least 1"))
	}
	return errors.Join(errs...)
}

// ParsedLevels returns the configured levels in order.
func (c Config) ParsedLevels() ([]core.Level, error) {
	if len(c.Harvest.Levels) == 0 {
		return nil, errors.New("harvest.levels is empty")
	}
	out := make([]core.Level, 0, len(c.Harvest.Levels))
	for _, s := range c.Harvest.Levels {
		l, err := core.ParseLevel(s)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ParsedKinds returns the configured lesson kinds in order.
func (c Config) ParsedKinds() ([]core.LessonKind, error) {
	if len(c.Harvest.Kinds) == 0 {
		return nil, errors.New("harvest.kinds is empty")
	}
	out := make([]core.LessonKind, 0, len(c.Harvest.Kinds))
	for _, s := range c.Harvest.Kinds {
		k, err := core.ParseLessonKind(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}
