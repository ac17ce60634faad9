// Package main is the terminal demo for the pageflow pagination engine.
// It drives the engine with in-memory surfaces and renders the visible
// pages with tcell, so pagination behavior can be watched live.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pageflow/internal/config"
	"github.com/dshills/pageflow/internal/logging"
	"github.com/dshills/pageflow/internal/offload"
	"github.com/dshills/pageflow/internal/page"
	"github.com/dshills/pageflow/internal/paginate"
	"github.com/dshills/pageflow/internal/policy"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	ConfigPath string
	ScriptPath string
	LogPath    string
	LogLevel   string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	// The screen owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if opts.LogPath != "" {
		f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: opening log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(level),
		Output: logOut,
		Prefix: "pageflow",
	})
	logging.SetDefault(log)

	// Split policy: built-in rule, or a user script.
	var splitFn offload.SplitPointFunc = policy.Default{}.SplitPoint
	if opts.ScriptPath != "" {
		src, err := os.ReadFile(opts.ScriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading policy script: %v\n", err)
			return 1
		}
		pol, err := policy.NewLuaPolicy(string(src), log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: loading policy script: %v\n", err)
			return 1
		}
		defer pol.Close()
		splitFn = pol.SplitPoint
	}

	exec := offload.NewExecutor(splitFn)
	channel := offload.NewWorkerChannel(exec, cfg.Offload.QueueSize)
	svc := offload.NewService(
		offload.WithChannel(channel),
		offload.WithSplitPointFunc(splitFn),
		offload.WithTimeout(cfg.Offload.TaskTimeout.Std()),
		offload.WithLogger(log),
	)
	_ = svc.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := svc.Stop(ctx); err != nil {
			log.Warn("offload service stop: %v", err)
		}
	}()

	sched := paginate.NewQueueScheduler()
	eng := paginate.New(cfg, page.MemoryFactory(), nil, svc, sched, paginate.WithLogger(log))
	eng.SetProbe(paginate.NewModelProbe(eng.Pool(), paginate.DefaultHeightModel()))
	eng.Start()
	defer eng.Teardown()

	if opts.ConfigPath != "" {
		watcher := config.NewWatcher(opts.ConfigPath, 0, func(c config.Config) {
			log.SetLevel(logging.ParseLevel(c.Logging.Level))
			log.Info("configuration reloaded")
		})
		watcher.Start()
		defer watcher.Stop()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating screen: %v\n", err)
		return 1
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: initializing screen: %v\n", err)
		return 1
	}
	defer screen.Fini()

	d := newDemo(screen, eng, sched, svc, log)
	d.seed()
	d.run()
	return 0
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ScriptPath, "script", "", "Path to a Lua split policy script")
	flag.StringVar(&opts.LogPath, "log", "", "Path to a log file (logs are dropped otherwise)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Pageflow - rich text pagination engine demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pageflow [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  type         append text to the active page\n")
		fmt.Fprintf(os.Stderr, "  enter        start a new paragraph\n")
		fmt.Fprintf(os.Stderr, "  backspace    delete backwards\n")
		fmt.Fprintf(os.Stderr, "  left/right   switch active page\n")
		fmt.Fprintf(os.Stderr, "  ctrl+n       add a page\n")
		fmt.Fprintf(os.Stderr, "  ctrl+d       delete the active page\n")
		fmt.Fprintf(os.Stderr, "  ctrl+r       reset pagination counters\n")
		fmt.Fprintf(os.Stderr, "  esc          quit\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if showVersion {
		fmt.Printf("Pageflow %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	return opts
}
