package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/justyntemme/notelog/pkg/framework/debug"
)

const envPrefix = "NOTEHOST"

// Config keys shared by flags, environment and config file.
const (
	keyConfig     = "config"
	keyLogLevel   = "log-level"
	keyLogFile    = "log-file"
	keySampleRate = "sample-rate"
	keyBlockSize  = "block-size"
	keyBlocks     = "blocks"
	keyNotes      = "notes"
	keyVelocity   = "velocity"
	keyStateIn    = "state-in"
	keyStateOut   = "state-out"
	keyLayout     = "layout"
	keyTrigger    = "trigger"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "notehost",
		Short:         "Headless host for the NoteLogger plugin",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v)
		},
	}

	flags := root.PersistentFlags()
	flags.String(keyConfig, "", "config file (default ./notehost.yaml or $HOME/.config/notehost/notehost.yaml)")
	flags.String(keyLogLevel, "info", "log level: debug, info, warn, error, off")
	flags.String(keyLogFile, "", "write plugin logs to this file instead of stderr")
	_ = v.BindPFlags(flags)

	root.AddCommand(newRunCmd(v), newStateCmd(), newTimecodeCmd())
	return root
}

// loadConfig layers environment variables and an optional YAML file under
// the bound flags. A missing default config file is not an error.
func loadConfig(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString(keyConfig); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("notehost")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "notehost"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// newLogger builds the host-side logger from the configured level.
func newLogger(v *viper.Viper, cmd *cobra.Command) (*debug.Logger, debug.LogLevel, error) {
	level, err := debug.ParseLevel(v.GetString(keyLogLevel))
	if err != nil {
		return nil, level, err
	}
	logger := debug.New(cmd.ErrOrStderr(), "notehost", debug.DefaultFlags)
	logger.SetLevel(level)
	return logger, level, nil
}
