// Copyright (c) 2026 thmasq. All rights reserved.
// SPDX-License-Identifier: MIT

package provision

import (
	"errors"
	"fmt"
)

// ErrConfig marks fatal configuration failures: a missing token, an
// empty repository list, or a malformed repository entry. Callers abort
// before any file is written when they see it.
var ErrConfig = errors.New("invalid configuration")

// ConfigError wraps a configuration validation failure with the field
// that caused it.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ConfigError) Unwrap() error { return ErrConfig }

func configErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
