// Package health runs the local diagnostics behind `certipro doctor`: API
// reachability, the stored session, and optional integrations.
//
// Checks run in parallel, each under its own timeout:
//
//	m := health.NewManager()
//	m.AddChecker(health.NewAPIChecker(cfg.API.BaseURL, http.DefaultClient, ua))
//	m.AddChecker(health.NewSessionChecker(path, store, now))
//
//	report := m.Check(ctx)
//	if report.Status == health.StatusUnhealthy { ... }
package health

import (
	"context"
	"time"
)

// Checker verifies one dependency of the CLI.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "api", "session-file".
	Name() string

	// Check must respect ctx and return quickly.
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check.
type Status string

const (
	// StatusHealthy means the component works.
	StatusHealthy Status = "healthy"

	// StatusDegraded means commands still run but something needs attention.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means commands depending on the component will fail.
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// Result is what one check found.
type Result struct {
	Name    string         `json:"name" yaml:"name"`
	Status  Status         `json:"status" yaml:"status"`
	Message string         `json:"message" yaml:"message"`
	Hint    string         `json:"hint,omitempty" yaml:"hint,omitempty"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration  `json:"latency_ns" yaml:"latency_ns"`
}

// NewResult creates a result with the given status and message.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail and returns r for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithHint attaches what the user can do about a failed check.
func (r *Result) WithHint(hint string) *Result {
	r.Hint = hint
	return r
}

// Healthy creates a healthy result with the given message.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result with the given message.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result with the given message.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
