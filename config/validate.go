package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var languageCode = regexp.MustCompile(`^[a-z]{2,3}$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Year, validation.Required, validation.Min(1971), validation.Max(9999)),
		validation.Field(&c.Month, validation.Required, validation.Min(1), validation.Max(12)),
		validation.Field(&c.Languages,
			validation.Required,
			validation.Each(validation.Required, validation.Match(languageCode)),
			validation.By(uniqueStrings),
		),
		validation.Field(&c.Output, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateSessions(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateMetadata() error {
	md := &c.Metadata
	err := validation.ValidateStruct(md,
		validation.Field(&md.Title, validation.Required),
		validation.Field(&md.PartTitleFormat, validation.Required, validation.By(oneVerb)),
	)
	if err != nil {
		return fmt.Errorf("invalid config: metadata: %w", err)
	}
	return nil
}

func (c *Config) validateSessions() error {
	if _, err := c.SessionTable(); err != nil {
		return fmt.Errorf("invalid config: sessions: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	err := validation.ValidateStruct(&c.Logging,
		validation.Field(&c.Logging.Format, validation.In("text", "json")),
		validation.Field(&c.Logging.Level, validation.In("debug", "info", "warn", "error")),
	)
	if err != nil {
		return fmt.Errorf("invalid config: logging: %w", err)
	}
	return nil
}

func uniqueStrings(value any) error {
	codes, _ := value.([]string)
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			return fmt.Errorf("%q listed twice", code)
		}
		seen[code] = true
	}
	return nil
}

// oneVerb requires exactly one %s in a part title format.
func oneVerb(value any) error {
	format, _ := value.(string)
	if strings.Count(format, "%s") != 1 || strings.Count(format, "%") != 1 {
		return errors.New("must contain exactly one %s")
	}
	return nil
}
