package supervise

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/vietddude/orchestrator/internal/metrics"
)

var (
	// ErrProcessStartup indicates the child process could not be spawned.
	ErrProcessStartup = errors.New("process startup failed")
	// ErrReadinessTimeout indicates a service never became reachable in time.
	ErrReadinessTimeout = errors.New("readiness timeout")
)

// Spec describes one service the supervisor owns, in dependency order.
type Spec struct {
	Name     string
	Command  []string
	Dir      string
	Endpoint Endpoint
}

// Process wraps one child service: spawn, observe, terminate. The supervisor
// holds the only reference; nothing else reads or mutates it.
type Process struct {
	spec Spec

	mu      sync.Mutex
	state   State
	cmd     *exec.Cmd
	exitErr error
	exited  chan struct{}

	output lockedBuffer
}

// NewProcess creates an unstarted process for the given spec.
func NewProcess(spec Spec) *Process {
	return &Process{
		spec:   spec,
		state:  StateNotStarted,
		exited: make(chan struct{}),
	}
}

// Name returns the service name.
func (p *Process) Name() string { return p.spec.Name }

// State returns the current lifecycle state.
func (p *Process) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// PID returns the OS pid, or 0 if the process never spawned.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Output returns the combined stdout/stderr captured so far.
func (p *Process) Output() string { return p.output.String() }

// Start spawns the process and waits for its endpoint to become reachable.
// On probe success the process is Ready; on timeout it is Failed and
// ErrReadinessTimeout is returned. A spawn failure returns ErrProcessStartup.
func (p *Process) Start(ctx context.Context, probe *Probe) error {
	if len(p.spec.Command) == 0 {
		p.setState(StateFailed)
		return fmt.Errorf("%w: %s: empty command", ErrProcessStartup, p.spec.Name)
	}

	p.setState(StateStarting)

	cmd := exec.Command(p.spec.Command[0], p.spec.Command[1:]...)
	cmd.Dir = p.spec.Dir
	cmd.Stdout = &p.output
	cmd.Stderr = &p.output
	// Own process group so termination reaches children (npm, go run, ...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	slog.Info("Starting service", "name", p.spec.Name, "command", p.spec.Command[0], "dir", p.spec.Dir)
	if err := cmd.Start(); err != nil {
		p.setState(StateFailed)
		return fmt.Errorf("%w: %s: %v", ErrProcessStartup, p.spec.Name, err)
	}

	p.mu.Lock()
	p.cmd = cmd
	p.mu.Unlock()

	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.exitErr = err
		p.mu.Unlock()
		close(p.exited)
	}()

	if !probe.Wait(ctx, p.spec.Name, p.spec.Endpoint) {
		p.setState(StateFailed)
		return fmt.Errorf("%w: %s did not answer on port %d within %s",
			ErrReadinessTimeout, p.spec.Name, p.spec.Endpoint.Port, p.spec.Endpoint.MaxWait)
	}

	p.setState(StateReady)
	metrics.ServiceReady.WithLabelValues(p.spec.Name).Set(1)
	slog.Info("Service is ready", "name", p.spec.Name, "port", p.spec.Endpoint.Port)
	return nil
}

// Terminate requests graceful termination, waits up to grace, then force
// kills. The process is Terminated afterwards regardless of outcome, and
// repeated calls are no-ops.
func (p *Process) Terminate(grace time.Duration) {
	p.mu.Lock()
	if p.state == StateTerminated {
		p.mu.Unlock()
		return
	}
	p.state = StateTerminated
	cmd := p.cmd
	p.mu.Unlock()

	metrics.ServiceReady.WithLabelValues(p.spec.Name).Set(0)

	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid

	select {
	case <-p.exited:
		// Already dead, nothing to signal.
		return
	default:
	}

	slog.Info("Terminating service", "name", p.spec.Name, "pid", pid)
	_ = syscall.Kill(-pid, syscall.SIGTERM)

	select {
	case <-p.exited:
		return
	case <-time.After(grace):
	}

	slog.Warn("Service did not exit in time, killing", "name", p.spec.Name, "pid", pid)
	_ = syscall.Kill(-pid, syscall.SIGKILL)

	select {
	case <-p.exited:
	case <-time.After(1 * time.Second):
	}
}

func (p *Process) setState(next State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if canTransition(p.state, next) {
		p.state = next
	}
}

// lockedBuffer guards the capture buffer against reads racing the child's
// output copier.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
