package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"arffstats/internal/analyzer"
	"arffstats/internal/config"
	"arffstats/internal/folder"
	"arffstats/internal/report"
	"arffstats/internal/webserver"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("arffstats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: arffstats [options] <input-folder>
       arffstats -serve [-addr :8080] [options]

Prints per-user statistics for every <userid>.arff file in the input folder.

Options:`)
		fs.PrintDefaults()
	}

	var (
		flagConfig   = fs.String("config", "", "TOML configuration file (default $ARFFSTATS_CONFIG)")
		flagBasic    = fs.Bool("basic", false, "print only instance and attribute counts")
		flagCompress = fs.Bool("compressed", false, "also read .arff.gz, .arff.zst and .arff.lz4 datasets")
		flagFormat   = fs.String("format", "", "output format: csv or json (overrides config)")
		flagLogLevel = fs.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
		flagServe    = fs.Bool("serve", false, "serve dataset uploads over HTTP instead of reading a folder")
		flagAddr     = fs.String("addr", "", "HTTP listen address (overrides config)")
	)

	err := fs.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		return 2
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *flagBasic {
		cfg.Extended = false
	}

	if *flagCompress {
		cfg.Compressed = true
	}

	if *flagFormat != "" {
		cfg.Format = *flagFormat
	}

	if *flagLogLevel != "" {
		cfg.LogLevel = *flagLogLevel
	}

	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}

	cfg.Input = fs.Arg(0)

	err = cfg.Validate()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	if *flagServe {
		return serve(cfg)
	}

	err = cfg.ValidateInput()
	if err != nil {
		fmt.Fprintln(stderr, "Input folder is needed.")
		fs.Usage()

		return 1
	}

	writer, err := report.NewWriter(stdout, cfg.Format, cfg.Extended)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	err = folder.Run(ctx, cfg.Input, cfg.Compressed, analyzer.New(cfg.AnalyzerOptions()), writer)
	if err != nil {
		slog.Error("Run failed", "error", err)
		return 1
	}

	return 0
}

func serve(cfg *config.Config) int {
	srv, err := webserver.NewServer(cfg.AnalyzerOptions(), cfg.Server.CacheSize, cfg.Server.MaxUploadSize)
	if err != nil {
		slog.Error("Server setup failed", "error", err)
		return 1
	}

	err = srv.ListenAndServe(cfg.Server.Addr)
	if err != nil {
		slog.Error("Server startup error", "error", err)
		return 1
	}

	return 0
}
