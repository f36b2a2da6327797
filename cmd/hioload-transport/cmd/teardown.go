package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/core/concurrency"
	"github.com/momentics/hioload-transport/reactor"
	"github.com/momentics/hioload-transport/transport"
)

type teardownFlags struct {
	streams      int
	refs         int
	resourceLoop bool
	bind         string
	timeout      time.Duration
}

type teardownRow struct {
	stream    int
	bound     transport.PollingEntityKind
	destroyed int
	flags     concurrency.Flags
	state     transport.RefCountState
}

type teardownResult struct {
	rows  []teardownRow
	ready int
}

func newTeardownCommand(root *rootFlags) *cobra.Command {
	flags := &teardownFlags{}
	c := &cobra.Command{
		Use:   "teardown",
		Short: "Drop every reference of a set of streams concurrently",
		Example: `  hioload-transport teardown --streams 8 --refs 32
  hioload-transport teardown --resource-loop --bind pollset_set`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.streams <= 0 || flags.refs <= 0 {
				return fmt.Errorf("--streams and --refs must be positive")
			}
			return withRuntime(cmd.Context(), root, func(deps runtimeDeps) error {
				res, err := runTeardown(deps, flags)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "descriptors ready before teardown: %d\n", res.ready)
				table := tablewriter.NewWriter(out)
				table.Header("Stream", "Refs", "Bound", "Destroy calls", "Destroy context", "State")
				for _, r := range res.rows {
					table.Append([]string{
						strconv.Itoa(r.stream), strconv.Itoa(flags.refs), r.bound.String(),
						strconv.Itoa(r.destroyed), r.flags.String(), r.state.String(),
					})
				}
				return table.Render()
			})
		},
	}
	c.Flags().IntVar(&flags.streams, "streams", 4, "number of streams")
	c.Flags().IntVar(&flags.refs, "refs", 8, "references held per stream, each dropped on its own goroutine")
	c.Flags().BoolVar(&flags.resourceLoop, "resource-loop", false, "unref from thread-resource-loop contexts")
	c.Flags().StringVar(&flags.bind, "bind", "pollset", "polling entity to bind streams to: pollset, pollset_set or empty")
	c.Flags().DurationVar(&flags.timeout, "timeout", 5*time.Second, "how long to wait for destroys")
	return c
}

func runTeardown(deps runtimeDeps, flags *teardownFlags) (*teardownResult, error) {
	ps, err := reactor.NewPollset()
	if err != nil {
		return nil, err
	}
	defer ps.Close()
	pss := reactor.NewPollsetSet()
	if err := pss.AddPollset(ps); err != nil {
		return nil, err
	}

	var entity transport.PollingEntity
	switch flags.bind {
	case "pollset":
		entity = transport.PollingEntityFromPollset(ps)
	case "pollset_set":
		entity = transport.PollingEntityFromPollsetSet(pss)
	case "empty":
		entity = transport.EmptyPollingEntity()
	default:
		return nil, fmt.Errorf("unknown polling entity %q", flags.bind)
	}

	var ecFlags concurrency.Flags
	if flags.resourceLoop {
		ecFlags = concurrency.FlagThreadResourceLoop
	}

	tr := &pipeTransport{logger: deps.Logger, pollset: ps, pollsetSet: pss}
	res := &teardownResult{rows: make([]teardownRow, flags.streams)}
	streams := make([]*pipeStream, flags.streams)
	var mu sync.Mutex
	var destroyed sync.WaitGroup
	for i := range streams {
		s, err := newPipeStream(i)
		if err != nil {
			return nil, err
		}
		streams[i] = s
		res.rows[i].stream = i
		destroyed.Add(1)
		destroyedCb := concurrency.NewClosure("pipe_stream_destroyed", func(ec *concurrency.ExecCtx, _ error) {
			mu.Lock()
			res.rows[i].destroyed++
			res.rows[i].flags = ec.Flags()
			mu.Unlock()
			destroyed.Done()
		})
		s.rc = transport.InitRefCount(int32(flags.refs), concurrency.NewClosure("pipe_stream_destroy",
			func(ec *concurrency.ExecCtx, _ error) {
				tr.DestroyStream(ec, s, destroyedCb)
			}), "pipe_stream", transport.WithEngine(deps.Engine))

		transport.SetPollingEntity(tr, s, entity)
		res.rows[i].bound = s.bound
		if _, err := s.w.Write([]byte{1}); err != nil {
			return nil, err
		}
	}

	ready, err := ps.Poll(100)
	switch {
	case errors.Is(err, api.ErrNotSupported):
		deps.Logger.Info("pollset cannot wait on this platform")
	case err != nil:
		return nil, err
	}
	res.ready = len(ready)

	var unrefs sync.WaitGroup
	for _, s := range streams {
		for j := 0; j < flags.refs; j++ {
			unrefs.Add(1)
			go func(rc *transport.StreamRefCount) {
				defer unrefs.Done()
				concurrency.WithExecCtx(ecFlags, rc.Unref)
			}(s.rc)
		}
	}
	unrefs.Wait()

	done := make(chan struct{})
	go func() {
		destroyed.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(flags.timeout):
		return nil, fmt.Errorf("streams not destroyed within %s", flags.timeout)
	}

	for i, s := range streams {
		res.rows[i].state = s.rc.State()
	}
	deps.Logger.Debug("teardown finished",
		zap.Int("streams", flags.streams), zap.Bool("resource_loop", flags.resourceLoop),
		zap.Stringer("bind", entity.Kind()), zap.Int("ready", res.ready))
	return res, nil
}
