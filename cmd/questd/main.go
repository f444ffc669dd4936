package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sandeepkv93/questd/internal/config"
	"github.com/sandeepkv93/questd/internal/update"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()
	var cfgFile string

	root := &cobra.Command{
		Use:   "questd",
		Short: "Turn goals into timed quests with steps, XP and levels",
		Long: `questd is a terminal quest tracker.

Describe a goal and a time budget; a language model drafts a quest of
scheduled steps. Completing every step grants XP. A background loop attaches
catch-up strategies to overdue steps and nudges quests left untouched.

Without an API key questd runs offline with canned quests.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, languageRequested(cmd, v))
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file")
	flags.String("db", config.Default().DBPath, "sqlite database path")
	flags.String("log", config.Default().LogPath, "log file path (empty disables logging)")
	flags.BoolP("verbose", "v", false, "debug logging")
	flags.Bool("offline", false, "use canned quests instead of the model")
	flags.String("lang", "", "response language (en, es, fr, de, ru, pt)")
	bindFlags(v, root)
	return root
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for key, name := range map[string]string{
		config.KeyDBPath:     "db",
		config.KeyLogPath:    "log",
		config.KeyLogVerbose: "verbose",
		config.KeyOffline:    "offline",
		config.KeyLanguage:   "lang",
	} {
		_ = v.BindPFlag(key, cmd.Flags().Lookup(name))
	}
}

// languageRequested reports whether the language was set explicitly rather
// than left to the persisted preference.
func languageRequested(cmd *cobra.Command, v *viper.Viper) bool {
	if cmd.Flags().Changed("lang") {
		return true
	}
	if _, ok := os.LookupEnv(config.EnvPrefix + "_LANGUAGE"); ok {
		return true
	}
	return v.InConfig(config.KeyLanguage)
}

func run(ctx context.Context, cfg config.Config, setLanguage bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if setLanguage {
		app.Store.SetLanguage(cfg.Language)
	}
	if err := app.Start(ctx); err != nil {
		return err
	}

	program := tea.NewProgram(update.NewModel(app.Deps()), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		app.Logger.Error("ui exited", zap.Error(err))
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "questd failed: %v\n", strings.TrimSpace(err.Error()))
		os.Exit(1)
	}
}
