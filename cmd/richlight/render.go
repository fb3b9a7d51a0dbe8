package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/dshills/richlight/internal/renderer/ansi"
	"github.com/dshills/richlight/internal/richtext/attributed"
)

func newRenderCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Highlight a file or stdin and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args)
		},
	}
	cmd.Flags().StringP("format", "f", "ansi", "output format (ansi, json, runs)")
	cmd.Flags().String("color", "auto", "color mode for ansi output (auto, none, 16, 256, truecolor)")
	cmd.Flags().Bool("strict", false, "fail instead of printing unstyled text when highlighting fails")
	_ = c.v.BindPFlag("format", cmd.Flags().Lookup("format"))
	_ = c.v.BindPFlag("color", cmd.Flags().Lookup("color"))
	_ = c.v.BindPFlag("strict", cmd.Flags().Lookup("strict"))
	return cmd
}

func (c *cli) runRender(cmd *cobra.Command, args []string) error {
	logger := c.logger(cmd.ErrOrStderr())
	svc, err := c.service(logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	text, hlErr := svc.Highlight(input)
	if hlErr != nil && c.v.GetBool("strict") {
		return hlErr
	}

	out := cmd.OutOrStdout()
	switch format := c.v.GetString("format"); format {
	case "ansi":
		var file *os.File
		if f, ok := out.(*os.File); ok {
			file = f
		}
		profile, err := ansi.ParseProfile(c.v.GetString("color"), file)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, ansi.Render(text, ansi.Options{Profile: profile, Defaults: svc.Defaults()}))
		return err
	case "json":
		data, err := text.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = out.Write(pretty.Pretty(data))
		return err
	case "runs":
		_, err := fmt.Fprint(out, formatRuns(text))
		return err
	default:
		return fmt.Errorf("unknown format %q (want ansi, json or runs)", format)
	}
}

// formatRuns lists one run per line: the range, the covered text and the
// attributes in key order.
func formatRuns(text *attributed.Text) string {
	var b strings.Builder
	for _, run := range text.Runs() {
		sub, _ := text.Substring(run.Range)
		fmt.Fprintf(&b, "%s %q", run.Range, sub)
		for _, k := range run.Attributes.Keys() {
			fmt.Fprintf(&b, " %s=%v", k, run.Attributes[k])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
