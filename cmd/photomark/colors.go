package main

import (
	"flag"
	"fmt"

	"github.com/example/photomark/internal/surface"
)

type colorsCmd struct {
	*root
	fs *flag.FlagSet
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	cmd := &colorsCmd{root: r.subcommand("colors"), fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) Run() error {
	current := c.config.DrawColor()
	for i, entry := range surface.Palette() {
		marker := " "
		if entry.Color == current {
			marker = "*"
		}
		key := " "
		if i < 9 {
			key = fmt.Sprint(i + 1)
		}
		fmt.Fprintf(stdout, "%s %s %-8s %s\n", marker, key, entry.Name, entry.Color.Hex())
	}
	fmt.Fprintln(stdout, "any #RRGGBB, #RRGGBBAA or CSS color name is also accepted")
	return nil
}
