// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUserError_Error(t *testing.T) {
	t.Run("without wrapped error", func(t *testing.T) {
		e := &UserError{Message: "something broke"}
		if got := e.Error(); got != "something broke" {
			t.Errorf("Error() = %q, want %q", got, "something broke")
		}
	})

	t.Run("with wrapped error", func(t *testing.T) {
		cause := fmt.Errorf("disk full")
		e := &UserError{Message: "write failed", Err: cause}
		want := "write failed: disk full"
		if got := e.Error(); got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})
}

func TestUserError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	e := &UserError{Message: "wrapper", Err: cause}
	if got := e.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestExitCodes_Uniqueness(t *testing.T) {
	codes := map[int]Category{}
	for cat, code := range exitCodes {
		if other, dup := codes[code]; dup {
			t.Errorf("exit code %d shared by %s and %s", code, cat, other)
		}
		codes[code] = cat
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name         string
		build        func() *UserError
		wantCategory Category
		wantExitCode int
	}{
		{
			name:         "config",
			build:        func() *UserError { return NewConfigError("m", "c", "f", nil) },
			wantCategory: CategoryConfig,
			wantExitCode: ExitConfig,
		},
		{
			name:         "store",
			build:        func() *UserError { return NewStoreError("m", "c", "f", nil) },
			wantCategory: CategoryStore,
			wantExitCode: ExitStore,
		},
		{
			name:         "transport",
			build:        func() *UserError { return NewTransportError("m", "c", "f", nil) },
			wantCategory: CategoryTransport,
			wantExitCode: ExitTransport,
		},
		{
			name:         "input",
			build:        func() *UserError { return NewInputError("m", "c", "f") },
			wantCategory: CategoryInput,
			wantExitCode: ExitInput,
		},
		{
			name:         "permission",
			build:        func() *UserError { return NewPermissionError("m", "c", "f", nil) },
			wantCategory: CategoryPermission,
			wantExitCode: ExitPermission,
		},
		{
			name:         "not found",
			build:        func() *UserError { return NewNotFoundError("m", "c", "f") },
			wantCategory: CategoryNotFound,
			wantExitCode: ExitNotFound,
		},
		{
			name:         "parse",
			build:        func() *UserError { return NewParseError("m", "c", nil) },
			wantCategory: CategoryParse,
			wantExitCode: ExitParse,
		},
		{
			name:         "cancelled",
			build:        func() *UserError { return NewCancelledError("m") },
			wantCategory: CategoryCancelled,
			wantExitCode: ExitCancelled,
		},
		{
			name:         "busy indexing",
			build:        func() *UserError { return NewBusyIndexingError() },
			wantCategory: CategoryBusyIndexing,
			wantExitCode: ExitBusyIndexing,
		},
		{
			name:         "internal",
			build:        func() *UserError { return NewInternalError("m", "c", "f", nil) },
			wantCategory: CategoryInternal,
			wantExitCode: ExitInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.build()
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %s, want %s", got.Category, tt.wantCategory)
			}
			if got.ExitCode() != tt.wantExitCode {
				t.Errorf("ExitCode() = %d, want %d", got.ExitCode(), tt.wantExitCode)
			}
		})
	}
}

func TestErrorChain(t *testing.T) {
	t.Run("errors.Is works with UserError", func(t *testing.T) {
		sentinel := fmt.Errorf("sentinel")
		userErr := NewStoreError("wrapped", "", "", sentinel)

		if !errors.Is(userErr, sentinel) {
			t.Error("errors.Is should find sentinel error in chain")
		}
	})

	t.Run("errors.As works with UserError", func(t *testing.T) {
		wrappedErr := fmt.Errorf("outer: %w", NewStoreError("db broke", "", "", nil))

		var targetErr *UserError
		if !errors.As(wrappedErr, &targetErr) {
			t.Fatal("errors.As should extract UserError")
		}
		if targetErr.ExitCode() != ExitStore {
			t.Errorf("ExitCode() = %d, want %d", targetErr.ExitCode(), ExitStore)
		}
	})

	t.Run("errors.As finds nested UserError", func(t *testing.T) {
		cfgErr := NewConfigError("bad config", "", "", nil)
		dbErr := NewStoreError("db broke", "", "", cfgErr)
		outerErr := fmt.Errorf("outer: %w", dbErr)

		var found *UserError
		if !errors.As(outerErr, &found) {
			t.Fatal("errors.As should extract store UserError")
		}
		if found.ExitCode() != ExitStore {
			t.Errorf("first unwrap: ExitCode() = %d, want %d", found.ExitCode(), ExitStore)
		}

		var nested *UserError
		if !errors.As(found.Err, &nested) {
			t.Fatal("errors.As should extract config UserError from chain")
		}
		if nested.ExitCode() != ExitConfig {
			t.Errorf("second unwrap: ExitCode() = %d, want %d", nested.ExitCode(), ExitConfig)
		}
	})
}

func TestUserError_AllFields(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := &UserError{
		Category: CategoryInternal,
		Message:  "msg",
		Cause:    "cause",
		Fix:      "fix",
		Err:      cause,
	}

	if err.Message != "msg" || err.Cause != "cause" || err.Fix != "fix" {
		t.Errorf("fields not set correctly: %+v", err)
	}
	if err.ExitCode() != ExitInternal {
		t.Errorf("ExitCode() = %d, want %d", err.ExitCode(), ExitInternal)
	}
}

func TestUserError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want []string
	}{
		{
			name: "store error with all fields",
			err:  NewStoreError("index locked", "another process holds it", "close other instances", nil),
			want: []string{"Error: index locked", "Cause: another process holds it", "Fix:   close other instances"},
		},
		{
			name: "input error with no cause",
			err:  NewInputError("bad flag", "", "run with --help"),
			want: []string{"Error: bad flag", "Fix:   run with --help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(true)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Format() missing %q in:\n%s", want, got)
				}
			}
		})
	}
}

func TestUserError_Format_NoColor(t *testing.T) {
	err := NewConfigError("bad config", "missing file", "run init", nil)
	got := err.Format(true)
	if strings.Contains(got, "\x1b[") {
		t.Error("Format(true) should not contain ANSI escape codes")
	}
}

func TestUserError_ToJSON(t *testing.T) {
	tests := []struct {
		name         string
		err          *UserError
		wantExitCode int
	}{
		{
			name:         "config error",
			err:          NewConfigError("bad", "", "", nil),
			wantExitCode: ExitConfig,
		},
		{
			name:         "internal error",
			err:          NewInternalError("bug", "", "", nil),
			wantExitCode: ExitInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.ToJSON()
			if got.ExitCode != tt.wantExitCode {
				t.Errorf("ExitCode = %d, want %d", got.ExitCode, tt.wantExitCode)
			}
			if got.Error != tt.err.Message {
				t.Errorf("Error = %q, want %q", got.Error, tt.err.Message)
			}
		})
	}
}
