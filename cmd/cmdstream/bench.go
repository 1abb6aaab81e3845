package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fxnlabs/cmdstream/internal/app"
	"github.com/fxnlabs/cmdstream/internal/cmdbuf"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/stat"
)

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Measure submit-to-completion latency of empty streams",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "iterations", Value: 1000, Usage: "Number of streams to submit"},
			&cli.UintFlag{Name: "engine", Value: 0, Usage: "Engine to submit to"},
		},
		Action: func(c *cli.Context) error {
			n := c.Int("iterations")
			if n <= 0 {
				return fmt.Errorf("--iterations must be positive")
			}
			return withDevice(c, func(dev *cmdbuf.Device, policy app.Policy) error {
				samples, err := bench(dev, policy, uint32(c.Uint("engine")), n)
				if err != nil {
					return err
				}
				s := summarize(samples)
				fmt.Fprintf(c.App.Writer, "iterations %d\nmean %.1fus\nstddev %.1fus\np50 %.1fus\np99 %.1fus\n",
					n, s.mean, s.stddev, s.p50, s.p99)
				return nil
			})
		},
	}
}

// bench returns the submit-to-completion latency of n barrier-only streams
// in microseconds.
func bench(dev *cmdbuf.Device, policy app.Policy, engine uint32, n int) (samples []float64, err error) {
	b, err := dev.NewBuffer(4096)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, b.Destroy()) }()

	samples = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if err := b.Start(0, 0); err != nil {
			return nil, err
		}
		if err := b.Barrier(); err != nil {
			return nil, err
		}
		begin := time.Now()
		if err := b.Submit(engine, policy.Priority, policy.Retry); err != nil {
			return nil, err
		}
		status, err := b.Wait(policy.WaitTimeout)
		if err != nil {
			return nil, err
		}
		if status != device.StatusComplete {
			return nil, fmt.Errorf("iteration %d finished with status %s", i, status)
		}
		samples = append(samples, float64(time.Since(begin).Nanoseconds())/1e3)
	}
	return samples, nil
}

type summary struct {
	mean, stddev, p50, p99 float64
}

func summarize(samples []float64) summary {
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	return summary{
		mean:   stat.Mean(sorted, nil),
		stddev: stat.StdDev(sorted, nil),
		p50:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
		p99:    stat.Quantile(0.99, stat.Empirical, sorted, nil),
	}
}
