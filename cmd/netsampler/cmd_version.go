package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/HerbHall/netsampler/internal/version"
)

func runVersion(args []string) {
	fs := flag.NewFlagSet("version", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print build information as JSON")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(version.Map()); err != nil {
			fmt.Fprintf(os.Stderr, "version failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(version.Info())
}
