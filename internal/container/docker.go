package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/gateway"
	"github.com/functionland/blox-wizard/internal/shell"
)

// Docker controls containers through the docker CLI.
type Docker struct {
	runner  shell.Runner
	binary  string
	timeout time.Duration
	logTail int
	allow   *AllowList
	logger  *zap.SugaredLogger
}

const defaultTimeout = 30 * time.Second

// NewDocker returns a CLI-backed Controller. A non-positive timeout falls back to 30s.
func NewDocker(runner shell.Runner, binary string, timeout time.Duration, logTail int, allow *AllowList, logger *zap.SugaredLogger) *Docker {
	if runner == nil {
		runner = shell.ExecRunner{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logTail <= 0 {
		logTail = 20
	}
	return &Docker{runner: runner, binary: binary, timeout: timeout, logTail: logTail, allow: allow, logger: logger}
}

func (d *Docker) Restart(ctx context.Context, name string) error {
	if err := d.allow.Check(name); err != nil {
		return fmt.Errorf("%w: %s", err, name)
	}
	_, err := d.run(ctx, "restart", name)
	if err != nil {
		return err
	}
	d.logger.Infow("container restarted", "container", name)
	return nil
}

func (d *Docker) Status(ctx context.Context, name string) (Status, error) {
	if err := d.allow.Check(name); err != nil {
		return Status{}, fmt.Errorf("%w: %s", err, name)
	}
	state, err := d.run(ctx, "inspect", "-f", "{{.State.Status}}", name)
	if err != nil {
		return Status{}, err
	}
	st := strings.TrimSpace(string(state))
	if st != "running" {
		return DeriveStatus(name, st, nil), nil
	}
	logs, err := d.run(ctx, "logs", "--tail", strconv.Itoa(d.logTail), name)
	if err != nil {
		return Status{}, err
	}
	return DeriveStatus(name, st, splitLines(logs)), nil
}

// run executes one docker command. docker logs writes the container's stderr to
// our stderr, so output from both streams is returned for that command: all stdout
// lines first, then all stderr lines. The CLI does not preserve the interleaving,
// so when both streams carry ERROR lines the reported one is the last stderr line,
// not necessarily the most recent in time.
func (d *Docker) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	op := "docker " + args[0]
	stdout, stderr, err := d.runner.Run(ctx, d.binary, args...)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return nil, &gateway.Error{Kind: gateway.ProcessFailure, Op: op, Err: errors.New(msg)}
	}
	if args[0] == "logs" {
		return append(stdout, stderr...), nil
	}
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return nil, &gateway.Error{Kind: gateway.ProcessFailure, Op: op, Err: errors.New(msg)}
	}
	return stdout, nil
}

func splitLines(b []byte) []string {
	b = bytes.TrimRight(b, "\n")
	if len(b) == 0 {
		return nil
	}
	return strings.Split(string(b), "\n")
}
