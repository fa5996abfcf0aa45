// Command lttng-state replays a kernel trace dump through the state layer,
// logging lifecycle transitions and optionally exporting them as
// OpenTelemetry spans.
package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hafixo/lttng-analyses/internal/config"
	"github.com/hafixo/lttng-analyses/internal/export"
	"github.com/hafixo/lttng-analyses/internal/filter"
	"github.com/hafixo/lttng-analyses/internal/state"
	"github.com/hafixo/lttng-analyses/internal/tracereader"
	"github.com/hafixo/lttng-analyses/internal/tracker"
)

type options struct {
	tracePath  string
	filterExpr string
	logLevel   string
	export     bool
	summary    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := new(options)
	cmd := &cobra.Command{
		Use:   "lttng-state",
		Short: "Replay a kernel trace dump into live system state",
		Long: `lttng-state replays a JSON-lines kernel trace dump (syscalls, interrupts,
block I/O) through the event-to-state layer, logs lifecycle transitions and
prints a summary of the resulting state.`,
		DisableAutoGenTag: true,
		RunE:              o.run,
	}

	cmd.Flags().StringVarP(&o.tracePath, "trace", "t", "", "Path to the trace dump ('-' for stdin)")
	cmd.Flags().StringVar(&o.filterExpr, "filter", "", "Event filter expression (overrides LTTNG_STATE_FILTER)")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "", "Log level (overrides LTTNG_STATE_LOG_LEVEL)")
	cmd.Flags().BoolVar(&o.export, "export", false, "Export completed lifecycles as OpenTelemetry spans")
	cmd.Flags().BoolVar(&o.summary, "summary", true, "Print a state summary after replay")
	cmd.MarkFlagRequired("trace")

	return cmd
}

func (o *options) run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}
	if o.filterExpr != "" {
		cfg.FilterExpression = o.filterExpr
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	trackerOpts := []tracker.Option{tracker.WithLogger(logger)}

	if cfg.FilterExpression != "" {
		f, err := filter.Compile(cfg.FilterExpression)
		if err != nil {
			return err
		}
		trackerOpts = append(trackerOpts, tracker.WithFilter(f))
	}

	if o.export {
		tp, err := export.InitProvider(cfg)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := export.ShutdownProvider(ctx, tp); err != nil {
				logger.Error().Err(err).Msg("failed to shut down tracer provider")
			}
		}()

		emitter := export.NewSpanEmitter(tp.Tracer("lttng-state"), export.SystemBootTime())
		trackerOpts = append(trackerOpts,
			tracker.WithSyscallNotifier(emitter),
			tracker.WithIRQNotifier(emitter),
			tracker.WithBlockNotifier(emitter),
		)
	} else {
		notifier := &logNotifier{log: logger}
		trackerOpts = append(trackerOpts,
			tracker.WithSyscallNotifier(notifier),
			tracker.WithIRQNotifier(notifier),
			tracker.WithBlockNotifier(notifier),
		)
	}

	sys := state.NewSystem()
	trk := tracker.New(sys, trackerOpts...)

	src, err := openTrace(o.tracePath)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := tracereader.New(src, trk).Run(); err != nil {
		return err
	}

	if o.summary {
		printSummary(cmd, sys)
	}
	return nil
}

func openTrace(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open trace dump")
	}
	return f, nil
}

func printSummary(cmd *cobra.Command, sys *state.System) {
	openFDs := 0
	inFlight := 0
	for _, proc := range sys.Processes {
		openFDs += len(proc.FDs)
		if proc.CurrentSyscall != nil {
			inFlight++
		}
	}
	pendingBlock := 0
	for _, disk := range sys.Disks {
		pendingBlock += len(disk.PendingRequests)
	}

	cmd.Printf("processes: %d (open fds: %d, unterminated syscalls: %d)\n",
		len(sys.Processes), openFDs, inFlight)
	cmd.Printf("cpus: %d, disks: %d (pending block requests: %d)\n",
		len(sys.CPUs), len(sys.Disks), pendingBlock)
}

// logNotifier logs lifecycle transitions when span export is off.
type logNotifier struct {
	log zerolog.Logger
}

func (n *logNotifier) HandleSyscallEntry(proc *state.Process, sc *state.Syscall) {
	n.log.Debug().Int64("tid", proc.TID).Str("syscall", sc.Name).Msg("syscall entry")
}

func (n *logNotifier) HandleSyscallExit(proc *state.Process, sc *state.Syscall) {
	if sc.IO == nil {
		return
	}
	req := sc.IO.SyscallBase()
	evt := n.log.Info().
		Int64("tid", proc.TID).
		Str("syscall", req.SyscallName).
		Str("op", req.Op.String()).
		Dur("duration", time.Duration(req.Duration))
	if req.Errno != 0 {
		evt = evt.Int64("errno", req.Errno)
	}
	evt.Msg("syscall i/o completed")
}

func (n *logNotifier) HandleHardIRQExit(irq *state.HardIRQ) {
	n.log.Info().
		Uint32("irq", irq.ID).
		Uint32("cpu", irq.CPU).
		Dur("duration", time.Duration(irq.Duration())).
		Msg("hard irq serviced")
}

func (n *logNotifier) HandleSoftIRQExit(irq *state.SoftIRQ) {
	n.log.Info().
		Uint32("vec", irq.ID).
		Uint32("cpu", irq.CPU).
		Dur("duration", time.Duration(irq.Duration())).
		Msg("soft irq serviced")
}

func (n *logNotifier) HandleBlockComplete(req *state.BlockIORequest) {
	n.log.Info().
		Uint64("dev", req.Dev).
		Uint64("sector", req.Sector).
		Int64("bytes", req.Size).
		Dur("duration", time.Duration(req.Duration)).
		Msg("block request completed")
}

func (n *logNotifier) HandleBlockRemap(remap *state.BlockRemapRequest, req *state.BlockIORequest) {
	evt := n.log.Debug().
		Uint64("dev", remap.Dev).
		Uint64("sector", remap.Sector).
		Uint64("old_dev", remap.OldDev).
		Uint64("old_sector", remap.OldSector)
	if req != nil {
		evt = evt.Bool("rekeyed", true)
	}
	evt.Msg("block request remapped")
}
