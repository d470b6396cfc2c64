package config

import "fmt"

// ConfigError reports an invalid settings value or an unreadable settings
// file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("settings file %s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrf(format string, args ...any) error {
	return &ConfigError{Err: fmt.Errorf(format, args...)}
}
