package config

import "sync/atomic"

// Clamp caps limit at MaxLimit when MaxLimit is set.
func (p PaginationConfig) Clamp(limit int) int {
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		return p.MaxLimit
	}
	return limit
}

// LivePagination holds the paging policy shared by the HTTP, gRPC and stream
// front ends. A config reload swaps it in place; readers see either the old
// or the new policy, never a mix of the two.
type LivePagination struct {
	v atomic.Pointer[PaginationConfig]
}

// NewLivePagination returns a LivePagination holding p.
func NewLivePagination(p PaginationConfig) *LivePagination {
	l := &LivePagination{}
	l.Store(p)
	return l
}

// Load returns the current policy.
func (l *LivePagination) Load() PaginationConfig {
	return *l.v.Load()
}

// Store replaces the current policy.
func (l *LivePagination) Store(p PaginationConfig) {
	l.v.Store(&p)
}

// RestartRequired reports whether next differs from prev in a field that
// only takes effect at startup. LogLevel and Pagination are applied live.
func RestartRequired(prev, next *Config) bool {
	a, b := prev.Server, next.Server
	a.LogLevel, b.LogLevel = "", ""
	a.Pagination, b.Pagination = PaginationConfig{}, PaginationConfig{}
	return a != b
}
