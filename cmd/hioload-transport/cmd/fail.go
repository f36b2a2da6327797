package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"

	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/control"
	"github.com/momentics/hioload-transport/core/concurrency"
	"github.com/momentics/hioload-transport/transport"
)

var allPhases = []string{
	transport.PhaseRecvInitialMetadata,
	transport.PhaseRecvMessage,
	transport.PhaseRecvTrailingMetadata,
	transport.PhaseOnComplete,
}

type failFlags struct {
	variant    string
	phases     []string
	code       string
	message    string
	standalone bool
}

type completionRow struct {
	variant string
	name    string
	status  string
	err     error
}

func newFailCommand(root *rootFlags) *cobra.Command {
	flags := &failFlags{}
	c := &cobra.Command{
		Use:   "fail",
		Short: "Fail a stream op batch and print its completions in order",
		Example: `  hioload-transport fail --phases recv_message,on_complete --code CANCELLED --message "stream closed"
  hioload-transport fail --variant combiner --standalone`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			failure, err := parseFailure(flags.code, flags.message)
			if err != nil {
				return err
			}
			variants, err := parseVariants(flags.variant)
			if err != nil {
				return err
			}
			if err := checkPhases(flags.phases); err != nil {
				return err
			}
			return withRuntime(cmd.Context(), root, func(runtimeDeps) error {
				var rows []completionRow
				for _, v := range variants {
					rows = append(rows, runFailure(v, flags.phases, flags.standalone, failure)...)
				}
				table := tablewriter.NewWriter(cmd.OutOrStdout())
				table.Header("Variant", "#", "Completion", "Status", "Error")
				for i, r := range rows {
					table.Append([]string{r.variant, strconv.Itoa(i + 1), r.name, r.status, fmt.Sprint(r.err)})
				}
				return table.Render()
			})
		},
	}
	c.Flags().StringVar(&flags.variant, "variant", "all", "queue, immediate, combiner or all")
	c.Flags().StringSliceVar(&flags.phases, "phases", allPhases, "phases pending on the batch")
	c.Flags().StringVar(&flags.code, "code", "CANCELLED", "status code of the failure")
	c.Flags().StringVar(&flags.message, "message", "stream closed", "status message of the failure")
	c.Flags().BoolVar(&flags.standalone, "standalone", false, "build the batch with the standalone factory")
	return c
}

func parseFailure(code, message string) (*api.Status, error) {
	var c codes.Code
	if err := c.UnmarshalJSON([]byte(strconv.Quote(strings.ToUpper(code)))); err != nil {
		return nil, fmt.Errorf("status code %q: %w", code, err)
	}
	return api.NewStatus(c, message), nil
}

func parseVariants(v string) ([]string, error) {
	switch v {
	case "all":
		return []string{control.VariantQueue, control.VariantImmediate, control.VariantCombiner}, nil
	case control.VariantQueue, control.VariantImmediate, control.VariantCombiner:
		return []string{v}, nil
	}
	return nil, fmt.Errorf("unknown variant %q", v)
}

func checkPhases(phases []string) error {
	for _, p := range phases {
		known := false
		for _, a := range allPhases {
			known = known || p == a
		}
		if !known {
			return fmt.Errorf("unknown phase %q (want one of %s)", p, strings.Join(allPhases, ", "))
		}
	}
	return nil
}

// runFailure fails a fresh batch through variant. The queue variant reports
// the list it built; the others report completions as they ran.
func runFailure(variant string, phases []string, standalone bool, failure error) []completionRow {
	var rows []completionRow
	cc := concurrency.NewCallCombiner(nil)
	ec := concurrency.NewExecCtx(0)
	record := func(name string) *concurrency.Closure {
		return concurrency.NewClosure(name, func(ec *concurrency.ExecCtx, err error) {
			if variant == control.VariantQueue {
				return
			}
			rows = append(rows, completionRow{variant: variant, name: name, status: "ran", err: err})
			if variant == control.VariantCombiner {
				cc.Stop(ec, name+" finished")
			}
		})
	}
	batch := buildBatch(phases, standalone, record)

	switch variant {
	case control.VariantQueue:
		var list concurrency.CallCombinerClosureList
		transport.QueueFailure(batch, failure, &list)
		for _, e := range list.Entries() {
			rows = append(rows, completionRow{variant: variant, name: e.Closure.Name(), status: e.Reason, err: e.Err})
		}
		// The list is only printed; a standalone batch still owes its
		// completion to get its slot back.
		if standalone {
			batch.OnComplete.Invoke(ec, failure)
		}
	case control.VariantImmediate:
		transport.FailImmediately(ec, batch, failure)
	case control.VariantCombiner:
		cc.Start(ec, concurrency.NewClosure("holder", func(*concurrency.ExecCtx, error) {}), nil, "cli holds the combiner")
		ec.Flush()
		transport.FailAndRun(ec, batch, failure, cc)
	}
	ec.Flush()
	return rows
}

func buildBatch(phases []string, standalone bool, record func(string) *concurrency.Closure) *transport.StreamOpBatch {
	var onComplete *concurrency.Closure
	for _, p := range phases {
		if p == transport.PhaseOnComplete {
			onComplete = record("on_complete")
		}
	}

	var batch *transport.StreamOpBatch
	if standalone {
		batch = transport.MakeStandaloneStreamOpBatch(onComplete)
	} else {
		batch = &transport.StreamOpBatch{OnComplete: onComplete, Payload: &transport.StreamOpBatchPayload{}}
	}
	for _, p := range phases {
		switch p {
		case transport.PhaseRecvInitialMetadata:
			batch.RecvInitialMetadata = true
			batch.Payload.RecvInitialMetadata.Ready = record("recv_initial_metadata_ready")
		case transport.PhaseRecvMessage:
			batch.RecvMessage = true
			batch.Payload.RecvMessage.Ready = record("recv_message_ready")
		case transport.PhaseRecvTrailingMetadata:
			batch.RecvTrailingMetadata = true
			batch.Payload.RecvTrailingMetadata.Ready = record("recv_trailing_metadata_ready")
		}
	}
	return batch
}
