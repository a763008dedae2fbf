package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/rafaelamiranda/noticias-ia/pkg/config"
	"github.com/rafaelamiranda/noticias-ia/pkg/content"
	"github.com/rafaelamiranda/noticias-ia/pkg/feed"
	"github.com/rafaelamiranda/noticias-ia/pkg/fetch"
	"github.com/rafaelamiranda/noticias-ia/pkg/resolve"
)

// Opts with all CLI options
type Opts struct {
	Lang   string `short:"l" long:"lang" default:"en" description:"feed variant to generate (en, pt)"`
	Config string `short:"c" long:"config" description:"configuration file, embedded defaults if empty"`
	OutDir string `short:"o" long:"out-dir" default:"." description:"directory for generated files"`
	OPML   bool   `long:"opml" description:"also write an OPML list of the variant's sources"`

	// Common options
	Debug   bool `long:"dbg" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	setupLog(opts.Debug)

	log.Printf("[INFO] starting noticias version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// run builds the feed of the selected variant and writes it to the output directory
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	variant, err := cfg.Variant(opts.Lang)
	if err != nil {
		return err
	}

	client := fetch.NewClient(fetch.Options{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		MaxBody:   cfg.Fetch.MaxBody,
	})

	extractor := content.NewHTTPExtractor(client, content.ExtractOptions{
		MaxChars:        cfg.Extraction.MaxChars,
		MinLineLen:      cfg.Extraction.MinLineLength,
		MinParagraphLen: cfg.Extraction.MinParagraphLen,
	}, cfg.Extraction.Fallback)

	assembler := feed.NewAssembler(feed.NewParser(client), resolve.NewResolver(client, cfg.Resolver.Aggregators),
		extractor, feed.AssemblerConfig{Window: cfg.Assembly.Window, Pause: cfg.Assembly.Pause})

	log.Printf("[INFO] generating variant %q from %d feeds", opts.Lang, len(variant.Feeds))
	entries := assembler.Assemble(ctx, variant.Feeds)
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}

	generator := feed.NewGenerator(feed.ChannelInfo{
		Title:       variant.Title,
		Link:        variant.Link,
		Description: variant.Description,
	})

	now := time.Now()
	rss, err := generator.GenerateRSS(entries, now)
	if err != nil {
		return fmt.Errorf("failed to generate feed: %w", err)
	}

	if err := os.MkdirAll(opts.OutDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(opts.OutDir, variant.Output)
	if err := writeFile(outPath, rss); err != nil {
		return err
	}
	log.Printf("[INFO] wrote %d entries to %s", len(entries), outPath)

	if opts.OPML {
		opml, err := generator.GenerateOPML(variant.Feeds, now)
		if err != nil {
			return fmt.Errorf("failed to generate opml: %w", err)
		}
		opmlPath := filepath.Join(opts.OutDir, opts.Lang+"-sources.opml")
		if err := writeFile(opmlPath, opml); err != nil {
			return err
		}
		log.Printf("[INFO] wrote sources to %s", opmlPath)
	}

	return nil
}

// writeFile replaces path atomically so readers never see a partial feed
func writeFile(path, data string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.WriteString(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // feed is public
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return nil
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
