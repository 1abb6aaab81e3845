package main

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fxnlabs/cmdstream/internal/app"
	"github.com/fxnlabs/cmdstream/internal/cmdbuf"
	"github.com/fxnlabs/cmdstream/internal/device"
	"github.com/fxnlabs/cmdstream/internal/fence"
	"github.com/fxnlabs/cmdstream/internal/memobj"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func fenceCommand() *cli.Command {
	return &cli.Command{
		Name:  "fence",
		Usage: "Order two streams on different engines through a memory fence",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "value", Value: "0x5", Usage: "Fence signal value (hex)"},
			&cli.UintFlag{Name: "consumer", Value: 0, Usage: "Engine of the waiting stream"},
			&cli.UintFlag{Name: "producer", Value: 1, Usage: "Engine of the signaling stream"},
			&cli.IntFlag{Name: "rounds", Value: 3, Usage: "Number of reset/wait/signal rounds"},
		},
		Action: func(c *cli.Context) error {
			value, err := hexutil.DecodeUint64(c.String("value"))
			if err != nil {
				return fmt.Errorf("invalid --value: %w", err)
			}
			log := loggerFrom(c)
			return withDevice(c, func(dev *cmdbuf.Device, policy app.Policy) error {
				s := &fenceScenario{
					dev:      dev,
					policy:   policy,
					log:      log,
					consumer: uint32(c.Uint("consumer")),
					producer: uint32(c.Uint("producer")),
				}
				for round := 1; round <= c.Int("rounds"); round++ {
					r, err := s.run(value)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "round %d: fence %s before signal=%s side effect=%d, after signal=%s side effect=%d\n",
						round, hexutil.EncodeUint64(r.address), r.before, r.sideBefore, r.after, r.sideAfter)
				}
				return nil
			})
		},
	}
}

type fenceScenario struct {
	dev      *cmdbuf.Device
	policy   app.Policy
	log      *zap.Logger
	consumer uint32
	producer uint32
}

type fenceRound struct {
	address    uint64
	before     fence.State
	after      fence.State
	sideBefore uint64
	sideAfter  uint64
}

// run submits a stream that waits on the fence and then writes a side
// effect, checks the side effect is held back, then signals the fence from
// the producer engine.
func (s *fenceScenario) run(value uint64) (r fenceRound, err error) {
	mem := memobj.New(s.dev.Session(), 4096, device.FlagMappable, s.log)
	if err := mem.Create(); err != nil {
		return r, err
	}
	defer func() { err = multierr.Append(err, mem.Destroy()) }()

	f, err := fence.New(mem, 0, fence.Values{Reset: 0, Wait: value, Signal: value})
	if err != nil {
		return r, err
	}
	r.address = f.Address()
	if err := f.Reset(); err != nil {
		return r, err
	}

	consumer, err := s.dev.NewBuffer(4096)
	if err != nil {
		return r, err
	}
	defer func() { err = multierr.Append(err, consumer.Destroy()) }()
	producer, err := s.dev.NewBuffer(4096)
	if err != nil {
		return r, err
	}
	defer func() { err = multierr.Append(err, producer.Destroy()) }()

	if err := consumer.Start(0, 0); err != nil {
		return r, err
	}
	if err := f.EncodeWait(consumer); err != nil {
		return r, err
	}
	if err := consumer.FenceSignal(mem, 8, 1); err != nil {
		return r, err
	}
	if err := consumer.Submit(s.consumer, s.policy.Priority, s.policy.Retry); err != nil {
		return r, err
	}

	// give the consumer time to reach the wait
	time.Sleep(10 * time.Millisecond)
	if r.before, err = f.State(); err != nil {
		return r, err
	}
	if r.sideBefore, err = mem.LoadUint64(8); err != nil {
		return r, err
	}

	if err := producer.Start(0, 0); err != nil {
		return r, err
	}
	if err := f.EncodeSignal(producer); err != nil {
		return r, err
	}
	if err := producer.Submit(s.producer, s.policy.Priority, s.policy.Retry); err != nil {
		return r, err
	}
	for _, b := range []*cmdbuf.Buffer{producer, consumer} {
		status, err := b.Wait(s.policy.WaitTimeout)
		if err != nil {
			return r, err
		}
		if status != device.StatusComplete {
			return r, fmt.Errorf("buffer %d finished with status %s", b.Handle(), status)
		}
	}

	if r.after, err = f.State(); err != nil {
		return r, err
	}
	if r.sideAfter, err = mem.LoadUint64(8); err != nil {
		return r, err
	}
	if r.sideBefore != 0 || r.sideAfter != 1 {
		return r, fmt.Errorf("side effect ordering violated: %d before signal, %d after", r.sideBefore, r.sideAfter)
	}
	s.log.Debug("fence round complete", zap.Uint64("fence", r.address))
	return r, nil
}
