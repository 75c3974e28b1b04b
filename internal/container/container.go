package container

import (
	"context"
	"errors"
	"strings"
)

//go:generate mockgen -destination=../mocks/controller.go -package=mocks github.com/functionland/blox-wizard/internal/container Controller

// Controller restarts and inspects the node's containers.
type Controller interface {
	Restart(ctx context.Context, name string) error
	Status(ctx context.Context, name string) (Status, error)
}

// status values reported to the UI
const (
	StatusRunning    = "Running"
	StatusError      = "Error"
	StatusNotRunning = "not running"
)

// Status is the coarse health of one container.
type Status struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	ErrorLine string `json:"errorLine,omitempty"`
}

var ErrNotAllowed = errors.New("container not allowed")

// AllowList is the fixed set of containers the wizard may touch.
type AllowList struct {
	names map[string]struct{}
	order []string
}

func NewAllowList(names ...string) *AllowList {
	a := &AllowList{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if _, dup := a.names[n]; dup {
			continue
		}
		a.names[n] = struct{}{}
		a.order = append(a.order, n)
	}
	return a
}

func (a *AllowList) Check(name string) error {
	if _, ok := a.names[name]; !ok {
		return ErrNotAllowed
	}
	return nil
}

func (a *AllowList) Names() []string {
	return append([]string(nil), a.order...)
}

// DeriveStatus maps a container state and its recent log lines to a Status.
// A container that is not running is reported with its state; otherwise the
// last line containing ERROR marks it as failed.
func DeriveStatus(name, state string, lines []string) Status {
	state = strings.TrimSpace(state)
	if state != "" && state != "running" {
		return Status{Name: name, Status: StatusNotRunning + " (" + state + ")"}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(lines[i], "ERROR") {
			return Status{Name: name, Status: StatusError, ErrorLine: strings.TrimSpace(lines[i])}
		}
	}
	return Status{Name: name, Status: StatusRunning}
}
