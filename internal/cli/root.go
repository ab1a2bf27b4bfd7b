// Package cli implements the fdio command, a small tool that runs
// single descriptor operations against real files.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/database64128/fdio-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the command configuration, read from flags, FDIO_* environment
// variables and an optional config file, in that order of precedence.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// SetDefaults registers default configuration values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

type app struct {
	fs     fdio.FileSystem
	v      *viper.Viper
	cfg    Config
	logger *slog.Logger
}

// NewRootCommand returns the fdio command tree operating on fs.
func NewRootCommand(fs fdio.FileSystem) *cobra.Command {
	a := &app{
		fs: fs,
		v:  viper.New(),
	}

	root := &cobra.Command{
		Use:   "fdio",
		Short: "Run file descriptor operations against files",
		Long: `fdio opens files and runs single descriptor operations on them:
locking, truncation, zero-copy transfer and scatter reads.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initConfig,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (yaml, toml or json)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", "text", "log format: text or json")
	_ = a.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = a.v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("log_format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(
		a.newGranularityCommand(),
		a.newStatCommand(),
		a.newLockCommand(),
		a.newTruncateCommand(),
		a.newCopyCommand(),
		a.newCatCommand(),
	)
	return root
}

func (a *app) initConfig(cmd *cobra.Command, args []string) error {
	SetDefaults(a.v)

	a.v.SetEnvPrefix("FDIO")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if cfgFile := a.v.GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := a.v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	logger, err := NewLogger(cmd.ErrOrStderr(), a.cfg.LogLevel, a.cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// NewLogger returns a slog.Logger writing to w at the named level and format.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// openFile opens path with mode and logs the descriptor it got.
func (a *app) openFile(path string, mode fdio.OpenMode) (uintptr, error) {
	fd, err := a.fs.Open(path, mode)
	if err != nil {
		return 0, err
	}
	a.logger.Debug("Opened file", "path", path, "mode", mode, "fd", fd)
	return fd, nil
}

func (a *app) closeFile(path string, fd uintptr) {
	if err := a.fs.Close(fd); err != nil {
		a.logger.Warn("Failed to close file", "path", path, "fd", fd, "error", err)
	}
}
