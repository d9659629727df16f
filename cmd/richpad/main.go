// Package main is the entry point for the richpad document tool.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"

	"github.com/dshills/richpad/internal/config"
	"github.com/dshills/richpad/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are the global flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	showVer    bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("richpad", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (.toml or .yaml)")
	fs.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	fs.BoolVar(&opts.showVer, "version", false, "Show version information")
	fs.BoolVar(&opts.showVer, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "richpad - rich text document tool\n\n")
		fmt.Fprintf(stderr, "Usage: richpad [options] <command> [args...]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-28s %s\n", c.usage, c.help)
		}
		fmt.Fprintf(stderr, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nEnvironment:\n")
		for _, name := range config.EnvVars() {
			fmt.Fprintf(stderr, "  %s\n", name)
		}
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if opts.showVer {
		printVersion(stdout)
		return 0
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return 2
	}

	configPath, err := homedir.Expand(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	opts.configPath = configPath

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		if _, err := logging.ParseLevel(opts.logLevel); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
		cfg.Log.Level = opts.logLevel
	}

	logger := logging.New(logging.Config{
		Level:  cfg.LogLevel(),
		Output: stderr,
		Prefix: "richpad",
	})
	logging.SetDefault(logger)

	cmd, ok := lookupCommand(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n", rest[0])
		fs.Usage()
		return 2
	}
	if len(rest)-1 < cmd.minArgs || (cmd.maxArgs >= 0 && len(rest)-1 > cmd.maxArgs) {
		fmt.Fprintf(stderr, "Usage: richpad %s\n", cmd.usage)
		return 2
	}

	env := &cmdEnv{
		cfg:        cfg,
		configPath: opts.configPath,
		logger:     logger,
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
	}
	if err := cmd.run(env, rest[1:]); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "richpad %s\n", version)
	fmt.Fprintf(w, "Commit: %s\n", commit)
	fmt.Fprintf(w, "Built: %s\n", date)
}
