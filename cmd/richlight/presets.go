package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/richlight/internal/highlight"
)

func newPresetsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in rule presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			palette, err := c.palette()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range highlight.PresetNames() {
				rules, _ := highlight.Preset(name, palette)
				fmt.Fprintf(out, "%-10s %d rules\n", name, len(rules))
			}
			return nil
		},
	}
}
