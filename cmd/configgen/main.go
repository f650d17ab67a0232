package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/dltcore/internal/config"
	"github.com/danmuck/dltcore/internal/logging"
)

const defaultPath = "dltscan.toml"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("configgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	kind := fs.String("kind", "scanner", "config kind: scanner|wire")
	output := fs.String("output", defaultPath, "output path for config template")
	validate := fs.Bool("validate", false, "validate an existing config file")
	input := fs.String("input", defaultPath, "config path for validation")
	force := fs.Bool("force", false, "overwrite existing config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logging.ConfigureRuntime()

	if *validate {
		cfg, err := config.LoadScannerConfig(*input)
		if err != nil {
			fmt.Fprintln(stderr, "configgen:", err)
			return 1
		}
		log.Info().Str("path", *input).Str("framing", cfg.Framing).Int("workers", cfg.Workers).Msg("validated scanner config")
		return 0
	}

	if err := config.WriteTemplate(*output, *kind, *force); err != nil {
		fmt.Fprintln(stderr, "configgen:", err)
		return 1
	}
	log.Info().Str("kind", *kind).Str("path", *output).Msg("wrote config template")
	return 0
}
