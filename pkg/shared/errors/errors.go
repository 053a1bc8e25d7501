package errors

import "fmt"

// ParseError describes a single syntax problem in a scanned script. Parsing
// never aborts on these; they are collected per file and reported with
// line-accurate positions.
type ParseError struct {
	FilePath string
	Line     int
	Column   int
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
}

// NewParseError creates a new ParseError instance.
func NewParseError(filePath string, line, column int, message string) *ParseError {
	return &ParseError{
		FilePath: filePath,
		Line:     line,
		Column:   column,
		Message:  message,
	}
}

// RuleExecutionError marks a diagnostic rule that faulted while checking one
// file. The scan engine isolates these per rule/file and converts them into a
// synthetic finding instead of aborting the scan.
type RuleExecutionError struct {
	RuleID   string
	FilePath string
	Cause    error
}

func (e *RuleExecutionError) Error() string {
	return fmt.Sprintf("rule %q failed on %q: %v", e.RuleID, e.FilePath, e.Cause)
}

func (e *RuleExecutionError) Unwrap() error {
	return e.Cause
}

// NewRuleExecutionError creates a new RuleExecutionError instance.
func NewRuleExecutionError(ruleID, filePath string, cause error) *RuleExecutionError {
	return &RuleExecutionError{
		RuleID:   ruleID,
		FilePath: filePath,
		Cause:    cause,
	}
}

// MockIntegrityError reports an operation that would violate a referential
// invariant of the mock state store. These always propagate as hard errors so
// a test fails loudly rather than passing against inconsistent state.
type MockIntegrityError struct {
	Store    string
	EntityID string
	Reason   string
}

func (e *MockIntegrityError) Error() string {
	return fmt.Sprintf("%s store: %q: %s", e.Store, e.EntityID, e.Reason)
}

// NewMockIntegrityError creates a new MockIntegrityError instance.
func NewMockIntegrityError(store, entityID, reason string) *MockIntegrityError {
	return &MockIntegrityError{
		Store:    store,
		EntityID: entityID,
		Reason:   reason,
	}
}

// ConfigurationError is fatal: a missing or malformed settings file aborts the
// run before any scanning starts.
type ConfigurationError struct {
	Path  string
	Cause error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %q: %v", e.Path, e.Cause)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new ConfigurationError instance.
func NewConfigurationError(path string, cause error) *ConfigurationError {
	return &ConfigurationError{Path: path, Cause: cause}
}

// ExitError carries a process exit code out of a command implementation.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit with code %d", e.Code)
	}
	return e.Message
}

// NewExitError creates a new ExitError instance.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}
