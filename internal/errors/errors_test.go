// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestUserError_Error verifies the Error() method implementation.
func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{
			name: "with underlying error",
			err: &UserError{
				Message: "Cannot write dataset",
				Err:     fmt.Errorf("disk full"),
			},
			want: "Cannot write dataset: disk full",
		},
		{
			name: "without underlying error",
			err:  &UserError{Message: "Invalid input"},
			want: "Invalid input",
		},
		{
			name: "empty message with underlying error",
			err:  &UserError{Err: fmt.Errorf("some error")},
			want: ": some error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("UserError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestExitCodes verifies that exit code constants have the correct values.
func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		want     int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitConfig", ExitConfig, 1},
		{"ExitInput", ExitInput, 4},
		{"ExitWrite", ExitWrite, 5},
		{"ExitNotFound", ExitNotFound, 6},
		{"ExitInternal", ExitInternal, 10},
		{"ExitInterrupted", ExitInterrupted, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.exitCode != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.exitCode, tt.want)
			}
		})
	}
}

// TestConstructors verifies that all constructor functions set the exit code and fields.
func TestConstructors(t *testing.T) {
	underlyingErr := fmt.Errorf("underlying error")

	tests := []struct {
		name         string
		err          *UserError
		wantExitCode int
	}{
		{"NewConfigError", NewConfigError("msg", "cause", "fix", underlyingErr), ExitConfig},
		{"NewInputError", NewInputError("msg", "cause", "fix", underlyingErr), ExitInput},
		{"NewWriteError", NewWriteError("msg", "cause", "fix", underlyingErr), ExitWrite},
		{"NewNotFoundError", NewNotFoundError("msg", "cause", "fix", underlyingErr), ExitNotFound},
		{"NewInternalError", NewInternalError("msg", "cause", "fix", underlyingErr), ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.ExitCode != tt.wantExitCode {
				t.Errorf("ExitCode = %d, want %d", tt.err.ExitCode, tt.wantExitCode)
			}
			if tt.err.Message != "msg" || tt.err.Cause != "cause" || tt.err.Fix != "fix" {
				t.Errorf("fields not set: %+v", tt.err)
			}
			if tt.err.Unwrap() != underlyingErr {
				t.Errorf("Unwrap() = %v, want %v", tt.err.Unwrap(), underlyingErr)
			}
		})
	}
}

func TestNewInterruptedError(t *testing.T) {
	err := NewInterruptedError("Ingestion interrupted", context.Canceled)
	if err.ExitCode != ExitInterrupted {
		t.Errorf("ExitCode = %d, want %d", err.ExitCode, ExitInterrupted)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("errors.Is(err, context.Canceled) = false, want true")
	}
}

// TestErrorChain verifies error wrapping compatibility with stdlib errors package.
func TestErrorChain(t *testing.T) {
	t.Run("errors.Is finds sentinel", func(t *testing.T) {
		sentinel := errors.New("no valid data")
		wrapped := fmt.Errorf("ingest: %w", sentinel)
		userErr := NewInputError("No valid data", "cause", "fix", wrapped)

		if !errors.Is(userErr, sentinel) {
			t.Error("errors.Is should find sentinel error in chain")
		}
	})

	t.Run("errors.As returns outermost UserError", func(t *testing.T) {
		inner := NewConfigError("config error", "cause", "fix", nil)
		outer := NewInternalError("internal error", "cause", "fix", inner)

		var target *UserError
		if !errors.As(outer, &target) {
			t.Fatal("errors.As should extract UserError")
		}
		if target.ExitCode != ExitInternal {
			t.Errorf("ExitCode = %d, want %d", target.ExitCode, ExitInternal)
		}
	})
}

// TestUserError_Format verifies the Format() method implementation.
func TestUserError_Format(t *testing.T) {
	tests := []struct {
		name    string
		err     *UserError
		want    []string
		notWant []string
	}{
		{
			name: "full error",
			err: &UserError{
				Message: "No source files found",
				Cause:   "data/raw is empty",
				Fix:     "Copy CSV exports into data/raw",
			},
			want: []string{"Error: No source files found", "Cause: data/raw is empty", "Fix:   Copy CSV exports into data/raw"},
		},
		{
			name:    "error without cause",
			err:     &UserError{Message: "Invalid input", Fix: "Use valid format"},
			want:    []string{"Error: Invalid input", "Fix:   Use valid format"},
			notWant: []string{"Cause:"},
		},
		{
			name:    "message only",
			err:     &UserError{Message: "Something failed"},
			want:    []string{"Error: Something failed"},
			notWant: []string{"Cause:", "Fix:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(true)
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Format() output missing %q\nGot: %s", substr, got)
				}
			}
			for _, substr := range tt.notWant {
				if strings.Contains(got, substr) {
					t.Errorf("Format() output contains %q\nGot: %s", substr, got)
				}
			}
			if strings.Contains(got, "\x1b[") {
				t.Error("Format(true) output contains ANSI codes")
			}
		})
	}
}

// TestUserError_Format_NoColorEnv verifies that NO_COLOR is respected.
func TestUserError_Format_NoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	err := NewConfigError("Test error", "Test cause", "Test fix", nil)
	if strings.Contains(err.Format(false), "\x1b[") {
		t.Error("Format() output contains ANSI codes despite NO_COLOR being set")
	}
}

// TestUserError_ToJSON verifies the JSON form omits empty fields.
func TestUserError_ToJSON(t *testing.T) {
	full, err := json.Marshal(NewWriteError("Cannot write dataset", "Permission denied", "Pass --output", nil).ToJSON())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"error":"Cannot write dataset","cause":"Permission denied","fix":"Pass --output","exit_code":5}`
	if string(full) != want {
		t.Errorf("ToJSON() = %s, want %s", full, want)
	}

	minimal, err := json.Marshal((&UserError{Message: "Error occurred", ExitCode: ExitInternal}).ToJSON())
	if err != nil {
		t.Fatal(err)
	}
	if string(minimal) != `{"error":"Error occurred","exit_code":10}` {
		t.Errorf("ToJSON() = %s", minimal)
	}
}

// TestReport verifies rendering and exit code selection.
func TestReport(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		var buf bytes.Buffer
		if code := Report(&buf, nil, false, true); code != ExitSuccess {
			t.Errorf("code = %d, want %d", code, ExitSuccess)
		}
		if buf.Len() != 0 {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("user error text", func(t *testing.T) {
		var buf bytes.Buffer
		code := Report(&buf, NewNotFoundError("No source files found", "empty", "add files", nil), false, true)
		if code != ExitNotFound {
			t.Errorf("code = %d, want %d", code, ExitNotFound)
		}
		if !strings.Contains(buf.String(), "Error: No source files found") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("user error json", func(t *testing.T) {
		var buf bytes.Buffer
		code := Report(&buf, NewInputError("No valid data", "", "", nil), true, true)
		if code != ExitInput {
			t.Errorf("code = %d, want %d", code, ExitInput)
		}
		var got ErrorJSON
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON %q: %v", buf.String(), err)
		}
		if got.Error != "No valid data" || got.ExitCode != ExitInput {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("plain error is internal", func(t *testing.T) {
		var buf bytes.Buffer
		code := Report(&buf, fmt.Errorf("boom"), false, true)
		if code != ExitInternal {
			t.Errorf("code = %d, want %d", code, ExitInternal)
		}
		if buf.String() != "Error: boom\n" {
			t.Errorf("output = %q", buf.String())
		}
	})
}

// TestFatalError_Nil verifies FatalError returns for a nil error.
func TestFatalError_Nil(t *testing.T) {
	FatalError(nil, false)
}
