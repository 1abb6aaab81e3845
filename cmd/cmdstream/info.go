package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/common-nighthawk/go-figure"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fxnlabs/cmdstream/internal/app"
	"github.com/fxnlabs/cmdstream/internal/cmdbuf"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/urfave/cli/v2"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "Print device parameters",
		Action: func(c *cli.Context) error {
			return withDevice(c, func(dev *cmdbuf.Device, _ app.Policy) error {
				out := c.App.Writer
				figure.NewFigure("cmdstream", "", true).Print()
				fmt.Fprintln(out)

				sess := dev.Session()
				engines, err := sess.QueryParam(device.ParamEngineCount, 0)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "revision\t%s\n", dev.Layout().Revision())
				for _, p := range []device.Param{
					device.ParamEngineCount,
					device.ParamPageSize,
					device.ParamContextSaveSize,
					device.ParamMemoryTotal,
					device.ParamMemoryUsed,
					device.ParamDeviceClock,
				} {
					v, err := sess.QueryParam(p, 0)
					if err != nil {
						return fmt.Errorf("failed to query %s: %w", p, err)
					}
					fmt.Fprintf(w, "%s\t%d\t%s\n", p, v, hexutil.EncodeUint64(v))
				}
				for i := uint32(0); i < uint32(engines); i++ {
					jobs, err := sess.QueryParam(device.ParamEngineJobs, i)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "engine %d jobs\t%d\n", i, jobs)
				}
				return w.Flush()
			})
		},
	}
}
