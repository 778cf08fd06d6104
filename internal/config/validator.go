package config

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	lderrors "github.com/standardbeagle/lds/internal/errors"
	"github.com/standardbeagle/lds/internal/output"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates every section and reports all problems at
// once as a MultiError of ConfigErrors.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	var errs []error
	errs = append(errs, v.validateSearchConfig(&cfg.Search)...)
	errs = append(errs, v.validateWalkConfig(&cfg.Walk)...)
	errs = append(errs, v.validateWatchConfig(&cfg.Watch)...)
	errs = append(errs, v.validatePatterns("include", cfg.Include)...)
	errs = append(errs, v.validatePatterns("exclude", cfg.Exclude)...)
	errs = append(errs, v.validateMarkup(cfg)...)

	if err := lderrors.NewMultiError(errs).ErrOrNil(); err != nil {
		return err
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateSearchConfig(search *Search) []error {
	var errs []error
	if search.Context < 0 {
		errs = append(errs, lderrors.NewConfigError("search.context", strconv.Itoa(search.Context), errors.New("must not be negative")))
	}
	if search.MaxPerFile < 0 {
		errs = append(errs, lderrors.NewConfigError("search.max_per_file", strconv.Itoa(search.MaxPerFile), errors.New("must not be negative")))
	}
	if search.Format != "" {
		if _, err := output.ParseFormat(search.Format); err != nil {
			errs = append(errs, lderrors.NewConfigError("search.format", search.Format, err))
		}
	}
	return errs
}

func (v *Validator) validateWalkConfig(walk *Walk) []error {
	var errs []error
	if walk.MaxFileSize < 0 {
		errs = append(errs, lderrors.NewConfigError("walk.max_file_size", strconv.FormatInt(walk.MaxFileSize, 10), errors.New("must not be negative")))
	}
	if walk.Workers < 0 {
		errs = append(errs, lderrors.NewConfigError("walk.workers", strconv.Itoa(walk.Workers), errors.New("must not be negative")))
	}
	return errs
}

func (v *Validator) validateWatchConfig(watch *Watch) []error {
	if watch.DebounceMs < 0 {
		return []error{lderrors.NewConfigError("watch.debounce_ms", strconv.Itoa(watch.DebounceMs), errors.New("must not be negative"))}
	}
	return nil
}

func (v *Validator) validatePatterns(field string, patterns []string) []error {
	var errs []error
	for i, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, lderrors.NewConfigError(fmt.Sprintf("%s[%d]", field, i), pattern, doublestar.ErrBadPattern))
		}
	}
	return errs
}

func (v *Validator) validateMarkup(cfg *Config) []error {
	var errs []error
	for ext, rule := range cfg.Markup {
		if ext == "" {
			errs = append(errs, lderrors.NewConfigError("markup.ext", ext, errors.New("extension must not be empty")))
		}
		for _, tag := range rule.Tags {
			if tag == "" {
				errs = append(errs, lderrors.NewConfigError("markup."+ext, tag, errors.New("tag names must not be empty")))
			}
		}
	}
	return errs
}

// setSmartDefaults fills values left at zero
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Walk.Parallel && cfg.Walk.Workers == 0 {
		cfg.Walk.Workers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 300
	}
	if cfg.Search.Format == "" {
		cfg.Search.Format = "text"
	}
	if cfg.Version == 0 {
		cfg.Version = 1
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
