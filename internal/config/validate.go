package config

import (
	"errors"
	"slices"

	"go.uber.org/multierr"
)

var (
	idFormats = []string{"uuid", "compact"}
	levels    = []string{"debug", "info", "warn", "error"}
)

// Validate checks the merged settings and returns every problem found,
// combined. Individual failures match ErrValidationFailed or
// ErrTypeMismatch.
func (c *Config) Validate() error {
	var errs error

	if s, err := c.GetString("blocks.idFormat"); err != nil {
		errs = multierr.Append(errs, notFoundOK(err))
	} else if !slices.Contains(idFormats, s) {
		errs = multierr.Append(errs, &ValidationError{Path: "blocks.idFormat", Message: "must be uuid or compact", Value: s})
	}

	if s, err := c.GetString("logging.level"); err != nil {
		errs = multierr.Append(errs, notFoundOK(err))
	} else if !slices.Contains(levels, s) {
		errs = multierr.Append(errs, &ValidationError{Path: "logging.level", Message: "unknown level", Value: s})
	}

	if n, err := c.GetInt("editor.maxChanges"); err != nil {
		errs = multierr.Append(errs, notFoundOK(err))
	} else if n <= 0 {
		errs = multierr.Append(errs, &ValidationError{Path: "editor.maxChanges", Message: "must be positive", Value: n})
	}

	if n, err := c.GetInt("lua.instructionLimit"); err != nil {
		errs = multierr.Append(errs, notFoundOK(err))
	} else if n < 0 {
		errs = multierr.Append(errs, &ValidationError{Path: "lua.instructionLimit", Message: "must not be negative", Value: n})
	}

	if d, err := c.GetDuration("lua.timeout"); err != nil {
		errs = multierr.Append(errs, notFoundOK(err))
	} else if d < 0 {
		errs = multierr.Append(errs, &ValidationError{Path: "lua.timeout", Message: "must not be negative", Value: d})
	}

	for _, p := range []string{"editor.voidTypes", "editor.inlineTypes"} {
		if _, err := c.GetStringSlice(p); err != nil {
			errs = multierr.Append(errs, notFoundOK(err))
		}
	}

	return errs
}

func notFoundOK(err error) error {
	if errors.Is(err, ErrSettingNotFound) {
		return nil
	}
	return err
}
