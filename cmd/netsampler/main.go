// Command netsampler prints one interval of network interface statistics in
// the agent's id|value|object line format.
//
// Each invocation compares the current `netstat -nbid` counters with those
// saved by the previous invocation. The first invocation on a host has no
// baseline: it saves one, waits sampler.sleep_interval, and samples again.
//
// Invocations sharing a snapshot directory must not overlap. An advisory lock
// detects overlap and logs a warning, but does not block.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/netsampler/internal/catalog"
	"github.com/HerbHall/netsampler/internal/collect"
	"github.com/HerbHall/netsampler/internal/config"
	"github.com/HerbHall/netsampler/internal/delta"
	"github.com/HerbHall/netsampler/internal/failure"
	"github.com/HerbHall/netsampler/internal/logging"
	"github.com/HerbHall/netsampler/internal/output"
	"github.com/HerbHall/netsampler/internal/parser"
	"github.com/HerbHall/netsampler/internal/sampler"
	"github.com/HerbHall/netsampler/internal/store"
	"github.com/HerbHall/netsampler/internal/telemetry"
	"github.com/HerbHall/netsampler/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			runVersion(os.Args[2:])
			return
		case "snapshot":
			os.Exit(runSnapshot(os.Args[2:], os.Stdout))
		}
	}
	os.Exit(runSample(os.Args[1:], os.Stdout))
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintf(w, "usage: netsampler [flags] [metric-state]\n")
		fmt.Fprintf(w, "       netsampler snapshot show|clear [flags]\n")
		fmt.Fprintf(w, "       netsampler version [--json]\n\n")
		fmt.Fprintf(w, "metric-state is a comma-separated list of 1/0, one per metric:\n")
		fmt.Fprintf(w, "  Ipkts,Ierrs,Ibytes,Opkts,Oerrs,Obytes,Coll,Drop\n")
		fmt.Fprintf(w, "Omit it to report every metric.\n\n")
		fmt.Fprintf(w, "Do not run overlapping invocations against the same snapshot directory.\n\n")
		fs.PrintDefaults()
	}
}

// runSample performs one sampling invocation and returns the process exit
// code. Metric lines and the failure message go to stdout.
func runSample(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("netsampler", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file")
	fs.Usage = usage(fs)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return failure.ExitOK
		}
		return failure.ExitGeneric
	}

	settings, err := loadSettings(*configPath)
	if err != nil {
		return fail(stdout, zap.NewNop(), err)
	}

	logger := logging.Must(settings.Log.Level, settings.Log.Format).
		With(version.Fields()...).
		With(zap.String("run_id", uuid.NewString()))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Default()
	if err != nil {
		return fail(stdout, logger, failure.New(failure.Config, "load metric catalog", err))
	}
	sel, err := catalog.ParseSelection(cat, fs.Arg(0))
	if err != nil {
		return fail(stdout, logger, &failure.Error{Kind: failure.Config, Msg: err.Error(), Err: err})
	}

	lock, held, err := store.Acquire(settings.Store.Dir)
	switch {
	case err != nil:
		logger.Warn("snapshot lock unavailable", zap.String("dir", settings.Store.Dir), zap.Error(err))
	case !held:
		logger.Warn("another invocation holds the snapshot lock; results may be skewed",
			zap.String("dir", settings.Store.Dir))
	}
	defer lock.Release()

	st, closeStore, err := openStore(ctx, settings.Store, logger)
	if err != nil {
		return fail(stdout, logger, err)
	}
	defer closeStore()

	var metrics *telemetry.Metrics
	opts := []sampler.Option{}
	if settings.Telemetry.Textfile != "" {
		metrics = telemetry.New()
		opts = append(opts, sampler.WithTelemetry(metrics))
	}

	s := sampler.New(
		collect.NewCommandRunner(settings.Collector.Command, settings.Collector.Args, settings.Collector.Timeout, logger),
		parser.New(cat, parser.WithMarker(settings.Collector.Marker)),
		delta.New(st, cat, settings.Sampler.SleepInterval, logger),
		output.NewFormatter(sel),
		stdout,
		logger,
		opts...,
	)

	res, runErr := s.RunWithBootstrap(ctx, sampler.Sleep)

	if metrics != nil {
		if err := metrics.WriteTextfile(settings.Telemetry.Textfile); err != nil {
			logger.Warn("telemetry not written", zap.Error(err))
		}
	}

	if runErr != nil {
		return fail(stdout, logger, runErr)
	}
	logger.Debug("sampling complete",
		zap.Stringer("state", res.State),
		zap.Int("matched", res.Counts.Matched),
		zap.Int("unmatched", res.Counts.Unmatched),
	)
	return failure.ExitOK
}

func loadSettings(path string) (config.Settings, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Settings{}, failure.New(failure.Config, "load config", err)
	}
	s, err := cfg.Settings()
	if err != nil {
		return config.Settings{}, failure.New(failure.Config, "config", err)
	}
	return s, nil
}

// openStore returns the configured snapshot store and a function releasing
// it.
func openStore(ctx context.Context, s config.StoreSettings, logger *zap.Logger) (store.SnapshotStore, func(), error) {
	switch s.Backend {
	case store.BackendSQLite:
		db, err := store.OpenSQLite(ctx, s.Dir, s.File, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				logger.Warn("close snapshot database", zap.Error(err))
			}
		}, nil
	default:
		return store.NewFileStore(s.Dir, s.File, logger), func() {}, nil
	}
}

// fail reports err on stdout, where the agent reads it, logs it, and returns
// the matching exit code.
func fail(stdout io.Writer, logger *zap.Logger, err error) int {
	code := failure.ExitCode(err)
	fmt.Fprintln(stdout, err.Error())
	logger.Error("sampling failed",
		zap.Stringer("kind", failure.KindOf(err)),
		zap.Int("exit_code", code),
		zap.Error(err),
	)
	return code
}
