// pkg/sudo/sudo.go

// Package sudo runs commands with elevated privileges, caching the
// elevation credential once per process lifetime. The credential is
// write-once: the first successful EnsureCredential fixes the session
// state (passwordless or a verified secret) until the process exits.
package sudo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"golang.org/x/term"
)

// ErrAuth indicates the elevation credential was rejected. Callers
// treat this as fatal for the run.
var ErrAuth = errors.New("authentication failed")

type state int

const (
	stateUnset state = iota
	stateAuthenticated
)

// Executor caches an elevation credential and serializes privileged
// command execution behind a single lock, so concurrent callers never
// trigger two interactive prompts.
type Executor struct {
	mu     sync.Mutex
	state  state
	secret string // empty while authenticated means passwordless sudo

	// Test seams.
	geteuid    func() int
	readSecret func() (string, error)
}

// NewExecutor creates an executor with no cached credential.
func NewExecutor() *Executor {
	return &Executor{
		geteuid:    os.Geteuid,
		readSecret: promptSecret,
	}
}

// Default is the process-wide session shared by all backends.
var Default = NewExecutor()

// NeedsElevation reports whether privileged commands require sudo,
// i.e. the process is not already running as root.
func (e *Executor) NeedsElevation() bool {
	return e.geteuid() != 0
}

// EnsureCredential makes sure a usable credential is cached. It is
// idempotent; once authenticated the state is terminal for the session.
func (e *Executor) EnsureCredential(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ensureLocked(ctx)
}

func (e *Executor) ensureLocked(ctx context.Context) error {
	if !e.NeedsElevation() {
		return nil
	}
	if e.state == stateAuthenticated {
		return nil
	}

	// Probe for passwordless access first (e.g. a still-valid sudo
	// timestamp or NOPASSWD configuration).
	probe := exec.CommandContext(ctx, "sudo", "-n", "true")
	probe.Stdout = io.Discard
	probe.Stderr = io.Discard
	if probe.Run() == nil {
		e.secret = ""
		e.state = stateAuthenticated
		return nil
	}

	secret, err := e.readSecret()
	if err != nil {
		return fmt.Errorf("reading credential: %w", err)
	}

	if err := verifySecret(ctx, secret); err != nil {
		return err
	}

	e.secret = secret
	e.state = stateAuthenticated
	return nil
}

// verifySecret checks the secret against a no-op elevation probe.
func verifySecret(ctx context.Context, secret string) error {
	cmd := exec.CommandContext(ctx, "sudo", "-S", "-v")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening sudo stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawning sudo: %w", err)
	}

	fmt.Fprintln(stdin, secret)
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return ErrAuth
	}
	return nil
}

func promptSecret() (string, error) {
	fmt.Fprint(os.Stderr, "\n[sudo] password required for installation: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// Run executes argv with elevation, inheriting the parent's standard
// streams except while the secret is transmitted.
func (e *Executor) Run(ctx context.Context, argv ...string) error {
	return e.run(ctx, "", argv)
}

// RunInDir is Run with the command's working directory set.
func (e *Executor) RunInDir(ctx context.Context, dir string, argv ...string) error {
	return e.run(ctx, dir, argv)
}

func (e *Executor) run(ctx context.Context, dir string, argv []string) error {
	if len(argv) == 0 {
		return errors.New("sudo: empty command")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.NeedsElevation() {
		cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
		cmd.Dir = dir
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}

	if err := e.ensureLocked(ctx); err != nil {
		return err
	}

	if e.secret == "" {
		cmd := exec.CommandContext(ctx, "sudo", argv...)
		cmd.Dir = dir
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}

	args := append([]string{"-S"}, argv...)
	cmd := exec.CommandContext(ctx, "sudo", args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("opening sudo stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawning sudo: %w", err)
	}

	// Feed the cached secret once, then close so the command reads a
	// normal EOF on its input.
	fmt.Fprintln(stdin, e.secret)
	stdin.Close()

	return cmd.Wait()
}

// RunOutput executes argv with elevation and returns its stdout.
func (e *Executor) RunOutput(ctx context.Context, argv ...string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("sudo: empty command")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.NeedsElevation() {
		return exec.CommandContext(ctx, argv[0], argv[1:]...).Output()
	}

	if err := e.ensureLocked(ctx); err != nil {
		return nil, err
	}

	if e.secret == "" {
		return exec.CommandContext(ctx, "sudo", argv...).Output()
	}

	args := append([]string{"-S"}, argv...)
	cmd := exec.CommandContext(ctx, "sudo", args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening sudo stdin: %w", err)
	}

	var out safeBuffer
	cmd.Stdout = &out
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawning sudo: %w", err)
	}
	fmt.Fprintln(stdin, e.secret)
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return out.Bytes(), err
	}
	return out.Bytes(), nil
}

type safeBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *safeBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf
}
