package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECK INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker is what the server's health endpoints consult.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
	AddCheck(name string, check HealthCheckFunc)
	RemoveCheck(name string)
}

// HealthCheckFunc returns nil when the dependency is usable.
type HealthCheckFunc func(ctx context.Context) error

// HealthStatus is the body of /health and /ready.
type HealthStatus struct {
	Healthy   bool                   `json:"healthy"`
	Ready     bool                   `json:"ready"`
	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

// CheckResult is the outcome of one named check.
type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPOSITE HEALTH CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// CompositeHealthChecker runs every registered check concurrently, each under its own timeout.
// One failing check makes the service unhealthy and not ready.
type CompositeHealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]HealthCheckFunc
	startTime time.Time
	version   string
	timeout   time.Duration
}

// NewCompositeHealthChecker creates a checker with a 5s per-check timeout.
func NewCompositeHealthChecker(version string) *CompositeHealthChecker {
	return &CompositeHealthChecker{
		checks:    make(map[string]HealthCheckFunc),
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// SetTimeout sets the per-check timeout.
func (c *CompositeHealthChecker) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
}

// AddCheck registers or replaces a named check.
func (c *CompositeHealthChecker) AddCheck(name string, check HealthCheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// RemoveCheck unregisters a named check.
func (c *CompositeHealthChecker) RemoveCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Check runs all checks and aggregates them.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]HealthCheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	status := HealthStatus{
		Healthy:   true,
		Ready:     true,
		Checks:    make(map[string]CheckResult, len(checks)),
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}
	if len(checks) == 0 {
		status.Message = "No health checks registered"
		return status
	}

	var (
		mu     sync.Mutex
		g      errgroup.Group
		failed []string
	)
	for name, check := range checks {
		name, check := name, check
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			start := time.Now()
			err := check(checkCtx)
			res := CheckResult{
				Healthy:  err == nil,
				Message:  "OK",
				Duration: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				res.Message = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			status.Checks[name] = res
			if err != nil {
				failed = append(failed, name)
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) == 0 {
		status.Message = "All checks passed"
		return status
	}
	sort.Strings(failed)
	status.Healthy = false
	status.Ready = false
	status.Message = "Some checks failed: " + strings.Join(failed, ", ")
	return status
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDEFINED HEALTH CHECKS
// ══════════════════════════════════════════════════════════════════════════════

// Pinger is implemented by database connections and caches.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPingCheck creates a connectivity check.
func NewPingCheck(p Pinger) HealthCheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// OpenReporter is implemented by circuit breakers.
type OpenReporter interface {
	IsOpen() bool
	Name() string
}

// NewBreakerCheck fails while the breaker is open.
func NewBreakerCheck(b OpenReporter) HealthCheckFunc {
	return func(context.Context) error {
		if b.IsOpen() {
			return fmt.Errorf("circuit %s is open", b.Name())
		}
		return nil
	}
}

// NoopHealthChecker reports healthy. Used when no checker is wired.
type NoopHealthChecker struct {
	startTime time.Time
}

// NewNoopHealthChecker creates a NoopHealthChecker.
func NewNoopHealthChecker() *NoopHealthChecker {
	return &NoopHealthChecker{startTime: time.Now()}
}

// Check returns a healthy status.
func (n *NoopHealthChecker) Check(context.Context) HealthStatus {
	return HealthStatus{
		Healthy:   true,
		Ready:     true,
		Message:   "OK",
		Uptime:    time.Since(n.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
}

func (n *NoopHealthChecker) AddCheck(string, HealthCheckFunc) {}
func (n *NoopHealthChecker) RemoveCheck(string)               {}
