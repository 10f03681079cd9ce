package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/simp-lee/confreport"
)

// Metadata holds the book metadata that is not derived from the conference.
type Metadata struct {
	Title           string         `toml:"title"`
	Creator         string         `toml:"creator"`
	Contributor     string         `toml:"contributor"`
	Publisher       string         `toml:"publisher"`
	Rights          string         `toml:"rights"`
	Notice          string         `toml:"notice"`
	PartTitleFormat string         `toml:"part_title_format"`
	Date            toml.LocalDate `toml:"date"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"` // "text" or "json"
	Level  string `toml:"level"`  // debug, info, warn, error
}

// Config describes one conference report build.
//
// Sections:
//   - Year, Month: the conference being packaged
//   - Languages: allow-list codes in book order, with optional display names
//   - Metadata: title, creator, publisher, rights, legal notice
//   - Sessions: localised session label to session code
//   - Output, Source, Verify: where to read talks and write the archive
//   - Logging: log format and level
type Config struct {
	Year          int               `toml:"year"`
	Month         int               `toml:"month"`
	Languages     []string          `toml:"languages"`
	LanguageNames map[string]string `toml:"language_names"`
	Metadata      Metadata          `toml:"metadata"`
	Sessions      map[string]string `toml:"sessions"`
	Source        string            `toml:"source"`
	Output        string            `toml:"output"`
	Verify        bool              `toml:"verify"`
	Logging       Logging           `toml:"logging"`
}

// Load parses the TOML file at path over Default, then normalises and
// validates the result. A missing file is an error; use Default directly
// to build without one.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config %s does not exist: %w", path, err)
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Finish(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Finish normalises and validates c in place. Load calls it; callers that
// build a Config in code call it themselves.
func (c *Config) Finish() error {
	c.normalize()
	return c.Validate()
}

// SessionTable builds the session lookup: the five standard sessions plus
// the configured localised labels.
func (c *Config) SessionTable() (confreport.SessionTable, error) {
	return confreport.NewSessionTable(confreport.DefaultSessions().Sessions(), c.Sessions)
}

// PackagerOptions maps the configuration to packager options. logger may
// be nil.
func (c *Config) PackagerOptions(logger *slog.Logger) (confreport.Options, error) {
	sessions, err := c.SessionTable()
	if err != nil {
		return confreport.Options{}, err
	}
	return confreport.Options{
		Metadata: confreport.Metadata{
			Title:           c.Metadata.Title,
			Creator:         c.Metadata.Creator,
			Contributor:     c.Metadata.Contributor,
			Publisher:       c.Metadata.Publisher,
			Rights:          c.Metadata.Rights,
			Notice:          c.Metadata.Notice,
			PartTitleFormat: c.Metadata.PartTitleFormat,
			Date:            c.publicationDate(),
		},
		Languages:     append([]string(nil), c.Languages...),
		LanguageNames: c.LanguageNames,
		Sessions:      sessions,
		Logger:        logger,
		Verify:        c.Verify,
	}, nil
}

// publicationDate returns the configured date, or the first day of the
// conference month.
func (c *Config) publicationDate() time.Time {
	if c.Metadata.Date.Year != 0 {
		return c.Metadata.Date.AsTime(time.UTC)
	}
	return time.Date(c.Year, time.Month(c.Month), 1, 0, 0, 0, 0, time.UTC)
}
