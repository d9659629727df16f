package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"

	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/engine"
	"github.com/dshills/richpad/internal/format"
	"github.com/dshills/richpad/internal/style"
)

// scriptCommand is one editing command. Arguments are split with shell
// quoting rules, except for raw commands, which get the rest of the line
// as their only argument.
type scriptCommand struct {
	raw     bool
	minArgs int
	maxArgs int
	run     func(ed *engine.Editor, args []string, w io.Writer) error
}

func noArgs(fn func(ed *engine.Editor) error) scriptCommand {
	return scriptCommand{run: func(ed *engine.Editor, _ []string, _ io.Writer) error {
		return fn(ed)
	}}
}

func printer(fn func(ed *engine.Editor) string) scriptCommand {
	return scriptCommand{run: func(ed *engine.Editor, _ []string, w io.Writer) error {
		_, err := fmt.Fprintln(w, fn(ed))
		return err
	}}
}

var scriptCommands = map[string]scriptCommand{
	"insert": {raw: true, minArgs: 1, maxArgs: 1, run: func(ed *engine.Editor, args []string, _ io.Writer) error {
		return ed.InsertText(strings.ReplaceAll(args[0], `\n`, "\n"))
	}},
	"newline":   noArgs((*engine.Editor).SplitBlock),
	"backspace": noArgs((*engine.Editor).Delete),
	"delete":    noArgs((*engine.Editor).DeleteForward),
	"undo":      noArgs((*engine.Editor).Undo),
	"redo":      noArgs((*engine.Editor).Redo),
	"all": noArgs(func(ed *engine.Editor) error {
		ed.SelectAll()
		return nil
	}),
	"indent": noArgs(func(ed *engine.Editor) error {
		return ed.Indent(format.IndentStep)
	}),
	"outdent": noArgs(func(ed *engine.Editor) error {
		return ed.Indent(-format.IndentStep)
	}),
	"status": printer((*engine.Editor).Status),
	"text":   printer((*engine.Editor).Text),
	"select": {minArgs: 2, maxArgs: 2, run: func(ed *engine.Editor, args []string, _ io.Writer) error {
		anchor, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		active, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		return ed.SelectOffsets(document.Offset(anchor), document.Offset(active))
	}},
	"caret": {minArgs: 1, maxArgs: 1, run: func(ed *engine.Editor, args []string, _ io.Writer) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		ed.MoveCaret(document.Offset(n))
		return nil
	}},
	"toggle": {minArgs: 1, maxArgs: 1, run: func(ed *engine.Editor, args []string, _ io.Writer) error {
		prop, err := style.ParseProperty(args[0])
		if err != nil {
			return err
		}
		return ed.ToggleBinary(prop)
	}},
	"set": {minArgs: 2, maxArgs: 2, run: func(ed *engine.Editor, args []string, _ io.Writer) error {
		prop, err := style.ParseProperty(args[0])
		if err != nil {
			return err
		}
		v := parseValue(prop, args[1])
		if prop.IsChar() {
			return ed.SetScalar(prop, v)
		}
		return ed.SetParagraph(prop, v)
	}},
	"list": {minArgs: 1, maxArgs: 1, run: func(ed *engine.Editor, args []string, _ io.Writer) error {
		kind, err := style.ParseListKind(args[0])
		if err != nil {
			return err
		}
		return ed.ToggleList(kind)
	}},
	"spacing": {minArgs: 1, maxArgs: 1, run: func(ed *engine.Editor, args []string, _ io.Writer) error {
		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return err
		}
		size := ed.Document().Default.Size
		if v, err := ed.UniformValue(style.FontSize); err == nil {
			if s, ok := v.(float64); ok {
				size = s
			}
		}
		return ed.SetLineSpacing(f, size)
	}},
	"value": {minArgs: 1, maxArgs: 1, run: func(ed *engine.Editor, args []string, w io.Writer) error {
		prop, err := style.ParseProperty(args[0])
		if err != nil {
			return err
		}
		v, err := ed.UniformValue(prop)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s: %v\n", prop, v)
		return err
	}},
	"save": {minArgs: 0, maxArgs: 1, run: func(ed *engine.Editor, args []string, _ io.Writer) error {
		if len(args) == 0 {
			return ed.Save()
		}
		path, err := homedir.Expand(args[0])
		if err != nil {
			return err
		}
		return ed.SaveAs(path)
	}},
}

// parseValue turns a script argument into a property value. Numbers are
// passed as float64 to the numeric properties, everything else as a
// string for the property to parse.
func parseValue(prop style.Property, raw string) style.Value {
	switch prop {
	case style.FontSize, style.TextIndent, style.LineSpacing:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case style.Bold, style.Italic, style.Underline:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}

// parseLine splits a script line into the command and its arguments.
func parseLine(line string) (string, scriptCommand, []string, error) {
	name, rest, _ := strings.Cut(strings.TrimLeft(line, " \t"), " ")
	cmd, ok := scriptCommands[name]
	if !ok {
		return name, cmd, nil, fmt.Errorf("unknown command %q", name)
	}
	if cmd.raw {
		return name, cmd, []string{rest}, nil
	}
	args, err := shellwords.Parse(rest)
	if err != nil {
		return name, cmd, nil, fmt.Errorf("%s: parsing arguments: %w", name, err)
	}
	return name, cmd, args, nil
}

// runScript executes one command per line from r. Blank lines and lines
// starting with # are skipped. A failing command is reported on w and the
// script continues; an unknown or malformed command stops it.
func runScript(ctx context.Context, ed *engine.Editor, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if trimmed := strings.TrimSpace(text); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		name, cmd, args, err := parseLine(text)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(args) < cmd.minArgs || len(args) > cmd.maxArgs {
			return fmt.Errorf("line %d: %s takes %s", line, name, argCount(cmd.minArgs, cmd.maxArgs))
		}
		if err := cmd.run(ed, args, w); err != nil {
			fmt.Fprintf(w, "line %d: %s: %v\n", line, name, err)
		}
	}
	return sc.Err()
}

func argCount(lo, hi int) string {
	switch {
	case lo == hi && lo == 1:
		return "1 argument"
	case lo == hi:
		return fmt.Sprintf("%d arguments", lo)
	default:
		return fmt.Sprintf("%d to %d arguments", lo, hi)
	}
}
