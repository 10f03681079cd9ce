package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

func (c *Config) normalize() {
	c.normalizeLanguages()
	c.normalizeMetadata()
	c.normalizeSessions()
	c.normalizePaths()
	c.normalizeLogging()
}

func (c *Config) normalizeLanguages() {
	for i, code := range c.Languages {
		c.Languages[i] = strings.ToLower(strings.TrimSpace(code))
	}
	if len(c.LanguageNames) == 0 {
		return
	}
	names := make(map[string]string, len(c.LanguageNames))
	for code, name := range c.LanguageNames {
		names[strings.ToLower(strings.TrimSpace(code))] = strings.TrimSpace(name)
	}
	c.LanguageNames = names
}

func (c *Config) normalizeMetadata() {
	md := &c.Metadata
	md.Title = strings.TrimSpace(md.Title)
	if md.Title == "" && c.Month >= 1 && c.Month <= 12 {
		md.Title = fmt.Sprintf(defaultTitleFormat, time.Month(c.Month), c.Year)
	}
	md.Creator = strings.TrimSpace(md.Creator)
	md.Contributor = strings.TrimSpace(md.Contributor)
	md.Publisher = strings.TrimSpace(md.Publisher)
	md.Rights = strings.TrimSpace(md.Rights)
	md.Notice = strings.TrimSpace(md.Notice)
	if strings.TrimSpace(md.PartTitleFormat) == "" {
		md.PartTitleFormat = defaultPartTitleFormat
	}
}

func (c *Config) normalizeSessions() {
	sessions := make(map[string]string, len(c.Sessions))
	for label, code := range c.Sessions {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		sessions[label] = strings.ToLower(strings.TrimSpace(code))
	}
	c.Sessions = sessions
}

func (c *Config) normalizePaths() {
	c.Source = strings.TrimSpace(c.Source)
	if c.Source == "" {
		c.Source = "."
	}
	c.Output = strings.TrimSpace(c.Output)
	if c.Output == "" {
		c.Output = fmt.Sprintf(defaultOutputFormat, c.Year, c.Month)
	}
	c.Source = filepath.Clean(c.Source)
	c.Output = filepath.Clean(c.Output)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
