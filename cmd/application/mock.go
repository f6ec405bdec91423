package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/bibmerge"
)

// Mock provides a mock implementation of Application for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value; Bibmerge
// falls back to a real client built from opts.
//
// Example Usage:
//
//	mock := &application.Mock{
//	    OutputFormatFunc: func() string { return "json" },
//	}
//	cmd := validate.NewCommand(mock)
//	// ... test command
type Mock struct {
	BibmergeFunc     func(opts ...bibmerge.Option) (bibmerge.Client, error)
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Bibmerge returns a client using the mock function or bibmerge.New.
func (m *Mock) Bibmerge(opts ...bibmerge.Option) (bibmerge.Client, error) {
	if m.BibmergeFunc != nil {
		return m.BibmergeFunc(opts...)
	}
	return bibmerge.New(opts...)
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Application at compile time.
var _ Application = (*Mock)(nil)
