/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ssargent/boxprofile/pkg/codec"
	"github.com/ssargent/boxprofile/pkg/config"
	"github.com/ssargent/boxprofile/pkg/di"
)

const (
	Version = "0.3.0"

	envPrefix = "boxprofile"
)

var container *di.Container

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "boxprofile",
	Short: "Encode sing-box profiles",
	Long: fmt.Sprintf(`boxprofile (v%s)

Encodes sing-box configurations into the binary profile format (.bpf)
imported by the sing-box apps, and generates configurations from
vless:// share links.`, Version),
	SilenceUsage: true,
}

// SetContainer injects the dependency container used by all commands
func SetContainer(c *di.Container) {
	container = c
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().String("settings", config.GetDefaultConfigPath(), "Path to the boxprofile settings file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the settings file")
}

// initEnv loads .env files and lets BOXPROFILE_* variables stand in for flags
func initEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// prepare binds the command's flags, loads settings and configures the
// container's logger and codec from them
func prepare(cmd *cobra.Command) (*config.Config, error) {
	if container == nil {
		return nil, errors.New("dependency container not initialized")
	}
	settingsPath, err := bindFlags(cmd)
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadOrDefault(settingsPath)
	if err != nil {
		return nil, err
	}
	if level := viper.GetString("log-level"); level != "" {
		settings.Logging.Level = level
	}

	logger, err := newLogger(cmd.ErrOrStderr(), settings.Logging)
	if err != nil {
		return nil, err
	}
	container.SetLogger(logger)
	container.SetCodec(codec.NewProfileCodec(codec.WithCompressionLevel(settings.Compression.Level)))

	return settings, nil
}

// bindFlags binds the command's flags to viper and returns the settings path,
// which may come from --settings or BOXPROFILE_SETTINGS
func bindFlags(cmd *cobra.Command) (string, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return "", fmt.Errorf("failed to bind flags: %w", err)
	}
	return viper.GetString("settings"), nil
}

// newLogger builds a text or JSON slog logger at the configured level
func newLogger(w io.Writer, logging config.Logging) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", logging.Level)
	}

	opts := &slog.HandlerOptions{Level: level}
	if logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
