package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli"

	"github.com/functionland/blox-wizard/internal/app"
	"github.com/functionland/blox-wizard/internal/onboarding"
)

func openState(m *metadata) (*onboarding.Service, error) {
	r, err := app.NewRepository(m.config)
	if err != nil {
		return nil, err
	}
	return onboarding.NewService(r), nil
}

func runStatus(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	svc, err := openState(m)
	if err != nil {
		return err
	}
	st, err := svc.Load(context.Background())
	if err != nil {
		return err
	}
	printJSON(m.w, onboarding.NewView(st))
	return nil
}

func runNextStep(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	svc, err := openState(m)
	if err != nil {
		return err
	}
	st, err := svc.Load(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintln(m.w, onboarding.NextStep(st.Progress).Path())
	return nil
}

func runReset(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	svc, err := openState(m)
	if err != nil {
		return err
	}
	if err := svc.Reset(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(m.w, "onboarding state reset: %s\n", m.config.State.File)
	return nil
}
