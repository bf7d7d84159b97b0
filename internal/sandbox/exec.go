package sandbox

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// Result is the outcome of a command that ran to completion or was killed.
type Result struct {
	ExitCode  int
	Stdout    string
	Stderr    string
	Truncated bool
	Duration  time.Duration
}

// RunWithTimeout runs commandLine through sh with the workspace root as the
// working directory. A non-positive timeout selects the policy default and
// longer requests are capped at the policy maximum.
//
// When the timeout expires the process group is interrupted, then killed after
// the grace period, and the partial result is returned with a *TimeoutError.
// Cancelling ctx kills the process group immediately.
func (g *Guard) RunWithTimeout(ctx context.Context, commandLine string, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = g.policy.defaultTimeout
	}
	timeout = min(timeout, g.policy.maxTimeout)

	stdout := newCollector(g.policy.maxOutputBytes)
	stderr := newCollector(g.policy.maxOutputBytes)

	cmd := exec.Command("sh", "-c", commandLine)
	cmd.Dir = g.policy.root
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = g.policy.gracePeriod
	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Command: commandLine, Cause: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var runErr error
	select {
	case err := <-done:
		runErr = err
	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		runErr = ctx.Err()
	case <-timer.C:
		interruptProcessGroup(cmd)
		select {
		case <-done:
		case <-time.After(g.policy.gracePeriod):
			killProcessGroup(cmd)
			<-done
		}
		runErr = &TimeoutError{Command: commandLine, Duration: timeout}
	}

	if errors.Is(runErr, exec.ErrWaitDelay) {
		// The shell exited but a background child kept the output pipes open.
		runErr = nil
	}

	res := &Result{
		ExitCode:  exitCode(cmd, runErr),
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}

	var exitErr *exec.ExitError
	if runErr != nil && errors.As(runErr, &exitErr) {
		return res, nil
	}
	return res, runErr
}

func exitCode(cmd *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil || cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
