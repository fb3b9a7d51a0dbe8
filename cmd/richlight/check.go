package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/richlight/internal/config/ruleset"
)

func newCheckCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check <rules-file>...",
		Short: "Validate rule-set documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := c.defaults()
			if err != nil {
				return err
			}
			palette, err := c.palette()
			if err != nil {
				return err
			}
			compiler := ruleset.NewCompiler(ruleset.WithDefaults(defaults), ruleset.WithPalette(palette))
			out := cmd.OutOrStdout()

			failed := 0
			for _, path := range args {
				rs, err := compiler.Load(path)
				if err != nil {
					failed++
					var list *ruleset.ErrorList
					if errors.As(err, &list) {
						fmt.Fprintf(out, "%s: FAIL\n", path)
						for _, e := range list.Errors {
							fmt.Fprintf(out, "  %s\n", e)
						}
					} else {
						fmt.Fprintf(out, "%s: FAIL\n  %v\n", path, err)
					}
					continue
				}
				fmt.Fprintf(out, "%s: ok (%q, %d rules, font %s, color %s)\n",
					path, rs.Name, len(rs.Rules), rs.Defaults.Font, rs.Defaults.TextColor)
				rs.Close()
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d rule sets invalid", failed, len(args))
			}
			return nil
		},
	}
}
