package errors

import (
	"fmt"
	"sync"
	"time"
)

// CompileIssue represents one diagnostic raised during a compilation.
type CompileIssue struct {
	Component string
	Line      int
	Column    int
	Message   string
	Severity  Severity
	Timestamp time.Time
}

// Severity represents the severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface.
func (ci *CompileIssue) Error() string {
	if ci.Component != "" {
		return fmt.Sprintf("%s: %s: %s", ci.Component, ci.Severity, ci.Message)
	}
	return fmt.Sprintf("%s: %s", ci.Severity, ci.Message)
}

// Collector accumulates diagnostics for one compilation. It is safe for
// concurrent use, though a single compilation runs synchronously.
type Collector struct {
	issues []CompileIssue
	mutex  sync.RWMutex
}

// NewCollector creates an empty diagnostic collector.
func NewCollector() *Collector {
	return &Collector{
		issues: make([]CompileIssue, 0),
	}
}

// Add records a diagnostic.
func (c *Collector) Add(issue CompileIssue) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	issue.Timestamp = time.Now()
	c.issues = append(c.issues, issue)
}

// Warnf records a warning-severity diagnostic.
func (c *Collector) Warnf(component, format string, args ...any) {
	c.Add(CompileIssue{
		Component: component,
		Message:   fmt.Sprintf(format, args...),
		Severity:  SeverityWarning,
	})
}

// Errorf records an error-severity diagnostic.
func (c *Collector) Errorf(component, format string, args ...any) {
	c.Add(CompileIssue{
		Component: component,
		Message:   fmt.Sprintf(format, args...),
		Severity:  SeverityError,
	})
}

// Issues returns a copy of all collected diagnostics.
func (c *Collector) Issues() []CompileIssue {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]CompileIssue, len(c.issues))
	copy(result, c.issues)
	return result
}

// Warnings returns the messages of all warning-or-lower diagnostics.
func (c *Collector) Warnings() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var out []string
	for _, issue := range c.issues {
		if issue.Severity <= SeverityWarning {
			out = append(out, issue.Message)
		}
	}
	return out
}

// Errors returns the messages of all error-or-higher diagnostics.
func (c *Collector) Errors() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var out []string
	for _, issue := range c.issues {
		if issue.Severity >= SeverityError {
			out = append(out, issue.Message)
		}
	}
	return out
}

// HasErrors returns true if any fatal or error diagnostics were collected.
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, issue := range c.issues {
		if issue.Severity >= SeverityError {
			return true
		}
	}
	return false
}
