package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/HerbHall/netsampler/pkg/models"
)

// runSnapshot inspects or removes the saved baseline sample.
func runSnapshot(args []string, stdout io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: netsampler snapshot show|clear [--config path]")
		return 1
	}
	action, args := args[0], args[1:]

	fs := flag.NewFlagSet("snapshot "+action, flag.ContinueOnError)
	configPath := fs.String("config", "", "path to configuration file")
	format := fs.String("format", "json", "output format for show: json or yaml")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	settings, err := loadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot %s failed: %v\n", action, err)
		return 1
	}
	logger := zap.NewNop()

	ctx := context.Background()
	st, closeStore, err := openStore(ctx, settings.Store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snapshot %s failed: %v\n", action, err)
		return 1
	}
	defer closeStore()

	switch action {
	case "show":
		sample, ok := st.Load(ctx)
		if !ok {
			fmt.Fprintln(os.Stderr, "no snapshot saved")
			return 1
		}
		if err := printSample(stdout, sample, *format); err != nil {
			fmt.Fprintf(os.Stderr, "snapshot show failed: %v\n", err)
			return 1
		}
	case "clear":
		if err := st.Clear(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "snapshot clear failed: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, "Snapshot cleared")
	default:
		fmt.Fprintf(os.Stderr, "unknown snapshot action %q\n", action)
		return 1
	}
	return 0
}

func printSample(w io.Writer, sample models.Sample, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sample); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sample)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
