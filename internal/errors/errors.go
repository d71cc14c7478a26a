// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the LMI CLI.
//
// This package defines UserError, a type that carries structured error information
// including what went wrong, why it happened, and how to fix it. It also defines
// consistent exit codes for different error categories.
//
// # Usage Example
//
// Creating and displaying errors:
//
//	err := errors.NewNotFoundError(
//	    "No source files found",
//	    "The input directory data/raw holds no *.csv files",
//	    "Copy CSV exports into data/raw or pass --input",
//	    underlyingErr,
//	)
//	if err != nil {
//	    // Simple approach: print and exit with colored output
//	    errors.FatalError(err, false)
//	}
//
// # Formatted Output
//
// The Format() method provides colored terminal output:
//
//	fmt.Fprint(os.Stderr, err.Format(false))
//	// Output (with colors):
//	// Error: No source files found
//	// Cause: The input directory data/raw holds no *.csv files
//	// Fix:   Copy CSV exports into data/raw or pass --input
//
// For JSON output:
//
//	jsonData := err.ToJSON()
//	json.NewEncoder(os.Stderr).Encode(jsonData)
//	// Output:
//	// {
//	//   "error": "No source files found",
//	//   "cause": "The input directory data/raw holds no *.csv files",
//	//   "fix": "Copy CSV exports into data/raw or pass --input",
//	//   "exit_code": 6
//	// }
//
// # Exit Codes
//
// The package defines semantic exit codes following Unix conventions:
//   - ExitSuccess (0): Successful execution
//   - ExitConfig (1): Configuration errors (missing/invalid config)
//   - ExitInput (4): Invalid input (bad arguments, no decodable data)
//   - ExitWrite (5): Output could not be written (permissions, disk)
//   - ExitNotFound (6): Resource not found (input directory, source files)
//   - ExitInternal (10): Internal errors (bugs, panics)
//
// Codes 2 and 3 are reserved and unused.
package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitConfig indicates configuration errors (missing/invalid config files).
	ExitConfig = 1

	// ExitInput indicates invalid input (bad arguments, files nothing could decode).
	ExitInput = 4

	// ExitWrite indicates the output artifact could not be written.
	ExitWrite = 5

	// ExitNotFound indicates resource not found errors (input directory, files).
	ExitNotFound = 6

	// ExitInternal indicates internal errors (bugs, unexpected panics).
	// Exit code 10 signals "this is a bug that should be reported".
	ExitInternal = 10

	// ExitInterrupted indicates the run was canceled by SIGINT or SIGTERM.
	ExitInterrupted = 130
)

// UserError represents an error with structured context for end users.
//
// It provides three levels of information:
//   - Message: What went wrong (user-facing error description)
//   - Cause: Why it happened (diagnostic information)
//   - Fix: How to fix it (actionable suggestion)
//
// UserError also carries an exit code for consistent CLI exit behavior
// and optionally wraps an underlying error for error chain compatibility.
type UserError struct {
	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred (diagnostic information).
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is the exit code that should be used when exiting due to this error.
	ExitCode int

	// Err is the underlying error that caused this error (optional).
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As.
func (e *UserError) Unwrap() error {
	return e.Err
}

func newUserError(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: code,
		Err:      err,
	}
}

// NewConfigError creates a configuration error with exit code ExitConfig.
//
// Use this for errors related to missing, invalid, or malformed configuration
// files and environment values.
//
// Example:
//
//	return NewConfigError(
//	    "Cannot load LMI configuration",
//	    "The config file .lmi/project.yaml is not valid YAML",
//	    "Fix the file or run 'lmi init --force' to recreate it",
//	    err,
//	)
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitConfig, msg, cause, fix, err)
}

// NewInputError creates an input error with exit code ExitInput.
//
// Use this for bad command-line arguments and for runs where the input
// exists but none of it could be used.
//
// Example:
//
//	return NewInputError(
//	    "No valid data",
//	    "None of the 3 source files could be decoded",
//	    "Check the file encodings or run with --debug",
//	    err,
//	)
func NewInputError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInput, msg, cause, fix, err)
}

// NewWriteError creates an output error with exit code ExitWrite.
//
// Example:
//
//	return NewWriteError(
//	    "Cannot write dataset",
//	    "Permission denied for data/processed/",
//	    "Check directory permissions or pass --output",
//	    err,
//	)
func NewWriteError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitWrite, msg, cause, fix, err)
}

// NewNotFoundError creates a resource not found error with exit code ExitNotFound.
func NewNotFoundError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitNotFound, msg, cause, fix, err)
}

// NewInternalError creates an internal error with exit code ExitInternal.
//
// Use this for unexpected errors that indicate bugs in the program.
// Internal errors should be reported to the maintainers.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return newUserError(ExitInternal, msg, cause, fix, err)
}

// NewInterruptedError creates a cancellation error with exit code
// ExitInterrupted.
func NewInterruptedError(msg string, err error) *UserError {
	return newUserError(ExitInterrupted, msg, "The run was interrupted before the dataset was written", "", err)
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display.
//
// The output includes colored sections for Error (red/bold), Cause (yellow),
// and Fix (green). Color output respects the NO_COLOR environment variable
// and can be explicitly disabled with the noColor parameter. Empty Cause or
// Fix fields are omitted.
//
// Note: This method temporarily modifies the global color.NoColor state
// and restores it after formatting.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON represents error information in JSON format.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to a JSON-serializable structure.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// Report writes err to w and returns the exit code to use.
//
// A UserError is rendered with Format, or as indented JSON when jsonOutput
// is set. Any other error is printed plainly and maps to ExitInternal.
// A nil error writes nothing and returns ExitSuccess.
func Report(w io.Writer, err error, jsonOutput, noColor bool) int {
	if err == nil {
		return ExitSuccess
	}

	ue, ok := err.(*UserError)
	if !ok {
		ue = NewInternalError(err.Error(), "", "", err)
	}
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(ue.ToJSON())
	} else if ok {
		fmt.Fprint(w, ue.Format(noColor))
	} else {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	return ue.ExitCode
}

// FatalError prints the error to stderr and exits with the appropriate code.
//
// This function never returns when err is non-nil.
//
// Usage:
//
//	if err := doSomething(); err != nil {
//	    errors.FatalError(err, jsonMode)
//	}
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	os.Exit(Report(os.Stderr, err, jsonOutput, false))
}
