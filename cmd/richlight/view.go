package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/richlight/internal/app"
	"github.com/dshills/richlight/internal/config/watcher"
	"github.com/dshills/richlight/internal/renderer/backend"
)

// reloadEvent wakes the view loop after the rule set changed.
type reloadEvent struct {
	tcell.EventTime
	snap app.Snapshot
}

func newViewCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Show highlighted text full-screen",
		Long:  "Show highlighted text full-screen. Arrow keys, j/k and PgUp/PgDn scroll; q or Esc quits.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd, args)
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "reload the rule set when it changes")
	cmd.Flags().String("log-file", "", "write logs to this file")
	_ = c.v.BindPFlag("watch", cmd.Flags().Lookup("watch"))
	_ = c.v.BindPFlag("log_file", cmd.Flags().Lookup("log-file"))
	return cmd
}

func (c *cli) runView(cmd *cobra.Command, args []string) error {
	// The screen owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if path := c.v.GetString("log_file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := c.logger(logOut)

	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	svc, err := c.service(logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	term, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("creating terminal: %w", err)
	}
	if err := term.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer term.Shutdown()

	name := "stdin"
	if len(args) > 0 {
		name = filepath.Base(args[0])
	}
	v := &viewer{term: term, svc: svc, input: input, name: name}
	v.refresh(svc.Snapshot())

	svc.OnReload(func(snap app.Snapshot) {
		ev := &reloadEvent{snap: snap}
		ev.SetEventNow()
		_ = term.PostEvent(ev)
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if rules := c.v.GetString("rules"); rules != "" && c.v.GetBool("watch") {
		go func() {
			err := svc.WatchRules(ctx, rules, watcher.WithDebounce(c.v.GetDuration("debounce")))
			if err != nil {
				logger.Error("watching %s: %v", rules, err)
			}
		}()
	}

	return v.loop()
}

type viewer struct {
	term  *backend.Terminal
	svc   *app.Service
	input string
	name  string
}

func (v *viewer) refresh(snap app.Snapshot) {
	text, err := v.svc.Highlight(v.input)
	v.term.SetText(text, v.svc.Defaults())

	status := fmt.Sprintf(" %s | %s (%d rules, v%d) | q quits", v.name, snap.Name, snap.Rules, snap.Version)
	if err != nil {
		status = fmt.Sprintf(" %s | highlighting failed: %v", v.name, err)
	}
	v.term.SetStatus(status)
}

func (v *viewer) loop() error {
	for {
		switch ev := v.term.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			v.term.Redraw()
		case *reloadEvent:
			v.refresh(ev.snap)
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyUp, ev.Key() == tcell.KeyRune && ev.Rune() == 'k':
				v.term.Scroll(-1)
			case ev.Key() == tcell.KeyDown, ev.Key() == tcell.KeyRune && ev.Rune() == 'j':
				v.term.Scroll(1)
			case ev.Key() == tcell.KeyPgUp:
				v.term.Scroll(-20)
			case ev.Key() == tcell.KeyPgDn, ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
				v.term.Scroll(20)
			}
		}
	}
}
