package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/richlight/internal/app"
	"github.com/dshills/richlight/internal/config/ruleset"
	"github.com/dshills/richlight/internal/highlight"
	"github.com/dshills/richlight/internal/richtext/core"
)

// cli carries settings shared by every subcommand.
type cli struct {
	v       *viper.Viper
	cfgFile string
}

func newRootCmd(version string) *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:           "richlight",
		Short:         "Rule-based rich-text highlighting",
		Long:          `richlight applies ordered highlight rules to text and renders the attributed result as ANSI, JSON or a run listing.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.cfgFile, "config", "c", "", "config file (default: ~/.config/richlight/config.yaml)")
	flags.StringP("rules", "r", "", "rule-set document (.toml, .yaml, .json)")
	flags.StringP("preset", "p", "", "built-in rule preset ("+strings.Join(highlight.PresetNames(), ", ")+")")
	flags.String("palette", "dark", "preset palette (dark, light)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = c.v.BindPFlag("rules", flags.Lookup("rules"))
	_ = c.v.BindPFlag("preset", flags.Lookup("preset"))
	_ = c.v.BindPFlag("palette", flags.Lookup("palette"))
	_ = c.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		newRenderCmd(c),
		newCheckCmd(c),
		newPresetsCmd(c),
		newViewCmd(c),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nSee '%s --help'", err, cmd.CommandPath())
	})
	return root
}

func (c *cli) initConfig() error {
	defaults := core.DefaultDefaults()
	c.v.SetDefault("defaults.font.family", defaults.Font.Family)
	c.v.SetDefault("defaults.font.size", defaults.Font.Size)
	c.v.SetDefault("defaults.color", defaults.TextColor.String())
	c.v.SetDefault("color", "auto")
	c.v.SetDefault("debounce", "100ms")

	c.v.SetEnvPrefix("RICHLIGHT")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		c.v.AddConfigPath(filepath.Join(home, ".config", "richlight"))
		c.v.SetConfigName("config")
		c.v.SetConfigType("yaml")
	}

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if c.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// defaults returns the text defaults from settings.
func (c *cli) defaults() (core.Defaults, error) {
	color, err := core.ParseColor(c.v.GetString("defaults.color"))
	if err != nil {
		return core.Defaults{}, fmt.Errorf("defaults.color: %w", err)
	}
	traits, err := core.ParseFontTraits(c.v.GetStringSlice("defaults.font.traits"))
	if err != nil {
		return core.Defaults{}, fmt.Errorf("defaults.font.traits: %w", err)
	}
	return core.Defaults{
		Font: core.Font{
			Family: c.v.GetString("defaults.font.family"),
			Size:   c.v.GetFloat64("defaults.font.size"),
			Traits: traits,
		},
		TextColor: color,
	}, nil
}

// palette returns the preset palette named in settings.
func (c *cli) palette() (highlight.Palette, error) {
	name := c.v.GetString("palette")
	p, ok := highlight.PaletteByName(name)
	if !ok {
		return highlight.Palette{}, fmt.Errorf("unknown palette %q (want dark or light)", name)
	}
	return p, nil
}

func (c *cli) logger(w io.Writer) *app.Logger {
	return app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(c.v.GetString("log_level")),
		Output: w,
		Prefix: "richlight",
	})
}

// service builds a Service configured from --rules or --preset.
func (c *cli) service(logger *app.Logger) (*app.Service, error) {
	defaults, err := c.defaults()
	if err != nil {
		return nil, err
	}
	palette, err := c.palette()
	if err != nil {
		return nil, err
	}
	svc := app.NewService(defaults,
		app.WithLogger(logger),
		app.WithCompiler(ruleset.NewCompiler(ruleset.WithDefaults(defaults), ruleset.WithPalette(palette))),
	)

	rules, preset := c.v.GetString("rules"), c.v.GetString("preset")
	switch {
	case rules != "" && preset != "":
		return nil, errors.New("use either --rules or --preset, not both")
	case rules != "":
		if err := svc.LoadRuleSet(rules); err != nil {
			return nil, err
		}
	case preset != "":
		list, ok := highlight.Preset(preset, palette)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (have %s)", preset, strings.Join(highlight.PresetNames(), ", "))
		}
		if err := svc.SetConfig(preset, defaults, list); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// readInput reads the file named by args, or stdin when there is none or
// it is "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}
