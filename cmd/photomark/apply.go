package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/editor"
)

// applyCmd replays an editing script without opening a window.
type applyCmd struct {
	file          string
	script        string
	output        string
	fromClipboard bool
	toClipboard   bool
	toStdout      bool
	*root
	fs *flag.FlagSet
}

func (a *applyCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseApplyCmd(args []string, r *root) (*applyCmd, error) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	a := &applyCmd{root: r, fs: fs}
	if r != nil {
		a.root = r.subcommand("apply")
	}
	fs.Usage = usageFunc(a)
	fs.StringVar(&a.script, "script", "", "editing script to replay, - for standard input")
	fs.StringVar(&a.output, "output", "", "output file path (defaults to the input file)")
	fs.BoolVar(&a.fromClipboard, "from-clipboard", false, "read the input image from the clipboard")
	fs.BoolVar(&a.fromClipboard, "from-clip", false, "read the input image from the clipboard (alias)")
	fs.BoolVar(&a.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&a.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	fs.BoolVar(&a.toStdout, "stdout", false, "write PNG data to stdout")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if a.script == "" || fs.NArg() > 1 {
		return nil, &UsageError{of: a}
	}
	if fs.NArg() == 1 {
		a.file = fs.Arg(0)
	}
	if a.file == "" && !a.fromClipboard {
		return nil, fmt.Errorf("input image is required")
	}
	if a.file == "-" && a.script == "-" {
		return nil, fmt.Errorf("the script and the image cannot both come from standard input")
	}
	if a.output == "" && !a.toStdout && !a.toClipboard {
		switch a.file {
		case "", "-":
			return nil, fmt.Errorf("output file is required when the image does not come from a file")
		default:
			a.output = a.file
		}
	}
	return a, nil
}

func (a *applyCmd) Run() error {
	commands, err := a.readScript()
	if err != nil {
		return err
	}
	src, err := inputSource(a.file, a.fromClipboard, nil, "")
	if err != nil {
		return err
	}
	opts, err := a.sessionOptions()
	if err != nil {
		return err
	}
	sess, err := editor.Open(context.Background(), src, opts...)
	if err != nil {
		return err
	}
	if err := replay(sess, commands, a.log); err != nil {
		return err
	}
	data, err := sess.Save()
	if err != nil {
		return err
	}
	return a.writeResult(data, a.output, a.toStdout, a.toClipboard)
}

func (a *applyCmd) readScript() ([]scriptLine, error) {
	if a.script == "-" {
		return parseScript(stdin)
	}
	f, err := os.Open(a.script)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	lines, err := parseScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.script, err)
	}
	return lines, nil
}

type scriptLine struct {
	n   int
	cmd editor.Command
}

// parseScript reads one command per line. Lines starting with { are JSON
// encoded commands, the rest use the textual form.
func parseScript(r io.Reader) ([]scriptLine, error) {
	var out []scriptLine
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		var (
			cmd editor.Command
			err error
		)
		if strings.HasPrefix(line, "{") {
			err = json.Unmarshal([]byte(line), &cmd)
		} else {
			cmd, err = editor.ParseCommand(line)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, scriptLine{n: n, cmd: cmd})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// replay applies the commands in order. Placing empty text is only worth a
// warning, as it is in the editor.
func replay(sess *editor.Session, lines []scriptLine, log *logrus.Entry) error {
	for _, l := range lines {
		err := sess.Apply(l.cmd)
		switch {
		case err == nil:
		case errors.Is(err, editor.ErrEmptyText):
			if log != nil {
				log.WithField("line", l.n).Warn(err)
			}
		default:
			return fmt.Errorf("line %d: %s: %w", l.n, l.cmd.Op, err)
		}
	}
	return nil
}
