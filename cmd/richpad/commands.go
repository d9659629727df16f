package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/richpad/internal/autosave"
	"github.com/dshills/richpad/internal/codec"
	"github.com/dshills/richpad/internal/config"
	"github.com/dshills/richpad/internal/engine"
	"github.com/dshills/richpad/internal/logging"
)

// cmdEnv is what a command runs against.
type cmdEnv struct {
	cfg        *config.Config
	configPath string
	logger     *logging.Logger
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
}

type command struct {
	name    string
	usage   string
	help    string
	minArgs int
	maxArgs int // -1 for unlimited
	run     func(env *cmdEnv, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"stat", "stat FILE", "Print word, paragraph and character counts", 1, 1, runStat},
		{"words", "words FILE", "Print the word count", 1, 1, runWords},
		{"cat", "cat FILE", "Print the document with terminal styling", 1, 1, runCat},
		{"convert", "convert IN OUT", "Convert between plain text and markup", 2, 2, runConvert},
		{"edit", "edit [FILE]", "Apply editing commands read from stdin", 0, 1, runEdit},
		{"config", "config [toml|yaml]", "Print the effective configuration", 0, 1, runConfig},
		{"version", "version", "Show version information", 0, 0, func(env *cmdEnv, _ []string) error {
			printVersion(env.stdout)
			return nil
		}},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// newEditor creates an editor configured from env and opens path if set.
func newEditor(env *cmdEnv, path string) (*engine.Editor, error) {
	def, err := env.cfg.CharStyle()
	if err != nil {
		return nil, err
	}
	ed := engine.New(
		engine.WithDefaultStyle(def),
		engine.WithMaxUndoEntries(env.cfg.History.MaxEntries),
		engine.WithLogger(env.logger),
	)
	if path == "" {
		return ed, nil
	}
	if err := ed.Open(path); err != nil {
		ed.Close()
		return nil, err
	}
	return ed, nil
}

func runStat(env *cmdEnv, args []string) error {
	ed, err := newEditor(env, args[0])
	if err != nil {
		return err
	}
	defer ed.Close()

	st := ed.Stats()
	fmt.Fprintf(env.stdout, "Words:                  %d\n", st.Words)
	fmt.Fprintf(env.stdout, "Paragraphs:             %d\n", st.Paragraphs)
	fmt.Fprintf(env.stdout, "Characters:             %d\n", st.Characters)
	fmt.Fprintf(env.stdout, "Characters (no spaces): %d\n", st.CharactersNoSpaces)
	fmt.Fprintln(env.stdout, ed.Status())
	return nil
}

func runWords(env *cmdEnv, args []string) error {
	ed, err := newEditor(env, args[0])
	if err != nil {
		return err
	}
	defer ed.Close()
	fmt.Fprintln(env.stdout, ed.WordCount())
	return nil
}

func runCat(env *cmdEnv, args []string) error {
	ed, err := newEditor(env, args[0])
	if err != nil {
		return err
	}
	defer ed.Close()
	return render(env.stdout, ed.Document())
}

func runConvert(env *cmdEnv, args []string) error {
	ed, err := newEditor(env, args[0])
	if err != nil {
		return err
	}
	defer ed.Close()
	return ed.SaveAs(args[1])
}

func runConfig(env *cmdEnv, args []string) error {
	f := config.FormatTOML
	if len(args) == 1 {
		var err error
		if f, err = config.FormatForPath("x." + args[0]); err != nil {
			return err
		}
	}
	return config.Encode(env.stdout, f, env.cfg)
}

// runEdit opens FILE (or an untitled document), runs the script on stdin
// and saves. With autosave enabled, changes are also written in the
// background, and the config file is watched for a new log level.
func runEdit(env *cmdEnv, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	ed, err := newEditor(env, "")
	if err != nil {
		return err
	}
	defer ed.Close()
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := ed.Open(path); err != nil {
				return err
			}
		} else if err := ed.SaveAs(path); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var saver *autosave.Saver
	if env.cfg.Autosave.Enabled {
		dir, err := env.cfg.AutosaveDir()
		if err != nil {
			return err
		}
		saver = autosave.New(ed,
			autosave.WithDelay(env.cfg.AutosaveDelay()),
			autosave.WithDir(dir),
			autosave.WithLogger(env.logger),
		)
		saver.Start()
		defer saver.Stop()
	}

	if env.configPath != "" {
		go func() {
			_ = config.Watch(ctx, env.configPath, func(cfg *config.Config, err error) {
				if err != nil {
					env.logger.Warn("config reload: %v", err)
					return
				}
				env.logger.SetLevel(cfg.LogLevel())
				env.logger.Info("config reloaded from %s", filepath.Base(env.configPath))
			})
		}()
	}

	if err := runScript(ctx, ed, env.stdin, env.stdout); err != nil {
		return err
	}

	if saver != nil && ed.Modified() {
		if err := saver.Flush(ctx); err != nil {
			return err
		}
		if path == "" {
			fmt.Fprintf(env.stdout, "autosaved to %s\n", saver.LastPath())
		}
		return nil
	}
	if path != "" && ed.Modified() {
		return ed.Save()
	}
	if path == "" {
		return ed.Write(env.stdout, codec.FormatMarkup)
	}
	return nil
}
