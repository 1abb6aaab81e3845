package main

import (
	"context"
	"time"

	"github.com/fxnlabs/cmdstream/internal/app"
	"github.com/fxnlabs/cmdstream/internal/cmdbuf"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/multierr"
)

// withDevice starts the application for the duration of fn. Errors from
// stopping it are joined with the error fn returns.
func withDevice(c *cli.Context, fn func(dev *cmdbuf.Device, policy app.Policy) error, opts ...fx.Option) (err error) {
	var (
		dev    *cmdbuf.Device
		policy app.Policy
	)
	a := fx.New(
		app.WithConfig(configFrom(c)),
		fx.NopLogger,
		fx.Populate(&dev, &policy),
		fx.Options(opts...),
	)
	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.Stop(context.Background()))
	}()
	return fn(dev, policy)
}
