package supervise

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultGrace is how long a terminating process gets before SIGKILL.
const DefaultGrace = 5 * time.Second

// Supervisor owns an ordered collection of processes. Startup is ordered and
// fail-fast; teardown is all-or-nothing and idempotent.
type Supervisor struct {
	probe *Probe
	grace time.Duration
	procs []*Process
	log   *slog.Logger

	tearing  atomic.Bool
	torndown chan struct{}
}

// New creates a supervisor for the given specs. Order is dependency order:
// earlier services start first and must be ready before later ones spawn.
func New(specs []Spec) *Supervisor {
	s := &Supervisor{
		probe:    NewProbe(),
		grace:    DefaultGrace,
		log:      slog.Default(),
		torndown: make(chan struct{}),
	}
	for _, spec := range specs {
		s.procs = append(s.procs, NewProcess(spec))
	}
	return s
}

// SetProbe overrides the readiness probe (shorter intervals in tests).
func (s *Supervisor) SetProbe(p *Probe) { s.probe = p }

// SetGrace overrides the termination grace period.
func (s *Supervisor) SetGrace(d time.Duration) { s.grace = d }

// Processes returns the managed processes in startup order.
func (s *Supervisor) Processes() []*Process { return s.procs }

// Start brings every service up in order. If any service fails to spawn or
// to become ready, everything started so far is torn down before the error
// is returned — no partially-running system is left behind.
func (s *Supervisor) Start(ctx context.Context) error {
	for _, p := range s.procs {
		if err := p.Start(ctx, s.probe); err != nil {
			s.log.Error("Service failed to start", "name", p.Name(), "error", err)
			s.Teardown()
			return fmt.Errorf("starting %s: %w", p.Name(), err)
		}
	}
	return nil
}

// Teardown terminates every process not already Terminated. It is safe to
// call repeatedly and concurrently with itself: exactly one caller performs
// the kill loop, later callers block until it has finished so every caller
// observes a fully terminated set.
func (s *Supervisor) Teardown() {
	if !s.tearing.CompareAndSwap(false, true) {
		<-s.torndown
		return
	}

	s.log.Info("Shutting down system...")
	// Reverse order: dependents go down before their dependencies.
	for i := len(s.procs) - 1; i >= 0; i-- {
		s.procs[i].Terminate(s.grace)
	}
	s.log.Info("System shutdown complete")
	close(s.torndown)
}
