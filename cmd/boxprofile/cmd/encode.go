package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ssargent/boxprofile/pkg/codec"
	"github.com/ssargent/boxprofile/pkg/config"
	"github.com/ssargent/boxprofile/pkg/di"
	"github.com/ssargent/boxprofile/pkg/source"
)

var (
	errMissingName       = errors.New("--name is required when config is not a file")
	errMissingRemotePath = fmt.Errorf("--remote-path or --remotepath is required for remote and icloud profiles: %w", codec.ErrMissingRemotePath)
	errMissingConfig     = errors.New("one of --config or --config-file is required")
	errConflictingConfig = errors.New("--config and --config-file cannot be used together")
)

// encodeOptions is the encode command's input after aliases are merged
type encodeOptions struct {
	Config             string
	ConfigFile         string
	Name               string
	Type               string
	RemotePath         string
	AutoUpdate         bool
	AutoUpdateInterval int32
	LastUpdated        int64
	Output             string
}

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a sing-box configuration into a binary profile",
	Long: `Encode a sing-box configuration into the binary profile format.

--config takes literal JSON or a path. Values starting with ./, / or ~/, or
ending in .json, are read as files; if the read fails the value is used as
literal text. Use --config-file to always read a file.

Without --output, a profile read from a file is written next to it with the
extension replaced (.bpf by default), and literal input is printed to stdout
as hex.

Every flag can also be set as BOXPROFILE_<FLAG>, e.g. BOXPROFILE_REMOTE_PATH.

Examples:
  boxprofile encode --config ./home.json
  boxprofile encode --config '{"outbounds":[]}' --name test
  boxprofile encode --config ./work.json --type remote \
    --remote-path https://example.com/work.json --auto-update --auto-update-interval 3600`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := prepare(cmd)
		if err != nil {
			return err
		}
		return runEncode(cmd.OutOrStdout(), container, settings, readEncodeOptions(viper.GetViper()))
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	addEncodeFlags(encodeCmd.Flags())
}

func addEncodeFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Configuration content (JSON string or file path)")
	fs.String("config-file", "", "Configuration file path; read errors are not ignored")
	fs.String("name", "", "Profile name (defaults to config filename if not specified)")
	fs.String("type", "", "Profile type: local, remote or icloud (default from settings, normally local)")
	fs.String("remote-path", "", "Remote path (required for remote and icloud profiles)")
	fs.String("remotepath", "", "Remote path (alias for --remote-path)")
	fs.Bool("auto-update", false, "Enable auto update (for remote profiles)")
	fs.Bool("autoupdate", false, "Enable auto update (alias for --auto-update)")
	fs.Int32("auto-update-interval", 0, "Auto update interval in seconds")
	fs.Int32("autoupdateinterval", 0, "Auto update interval in seconds (alias for --auto-update-interval)")
	fs.Int64("lastupdated", 0, "Last updated Unix timestamp (default: now, for remote profiles)")
	fs.StringP("output", "o", "", "Output file path (default: next to the config file, or stdout as hex)")

	for _, alias := range []string{"remotepath", "autoupdate", "autoupdateinterval"} {
		if err := fs.MarkHidden(alias); err != nil {
			panic(err)
		}
	}
}

// readEncodeOptions merges alias flags into one set of options
func readEncodeOptions(v *viper.Viper) encodeOptions {
	opts := encodeOptions{
		Config:      v.GetString("config"),
		ConfigFile:  v.GetString("config-file"),
		Name:        v.GetString("name"),
		Type:        v.GetString("type"),
		RemotePath:  v.GetString("remote-path"),
		AutoUpdate:  v.GetBool("auto-update") || v.GetBool("autoupdate"),
		LastUpdated: v.GetInt64("lastupdated"),
		Output:      v.GetString("output"),
	}
	if opts.RemotePath == "" {
		opts.RemotePath = v.GetString("remotepath")
	}
	opts.AutoUpdateInterval = v.GetInt32("autoupdateinterval")
	if opts.AutoUpdateInterval == 0 {
		opts.AutoUpdateInterval = v.GetInt32("auto-update-interval")
	}
	return opts
}

// runEncode builds the profile, encodes it and writes it to a file or as hex to out
func runEncode(out io.Writer, c *di.Container, settings *config.Config, opts encodeOptions) error {
	logger := c.GetLogger()

	typeName := opts.Type
	if typeName == "" {
		typeName = settings.Profile.Type
	}
	profileType, err := codec.ParseProfileType(typeName)
	if err != nil {
		return err
	}

	if profileType != codec.ProfileTypeLocal && opts.RemotePath == "" {
		return errMissingRemotePath
	}

	src, err := resolveSource(opts)
	if err != nil {
		return err
	}
	if src.FromFile() {
		logger.Debug("read config file", "path", src.Path, "bytes", len(src.Content))
	} else if source.LooksLikePath(opts.Config) {
		logger.Debug("config looks like a path but could not be read, using it as text", "value", opts.Config)
	}

	name := opts.Name
	if name == "" {
		name = src.BaseName()
	}
	if name == "" {
		return errMissingName
	}

	remoteOpts := codec.RemoteOptions{
		AutoUpdate:         opts.AutoUpdate || settings.Profile.AutoUpdate,
		AutoUpdateInterval: opts.AutoUpdateInterval,
		LastUpdated:        opts.LastUpdated,
	}
	if remoteOpts.AutoUpdateInterval == 0 {
		remoteOpts.AutoUpdateInterval = settings.Profile.AutoUpdateInterval
	}
	if profileType == codec.ProfileTypeRemote && remoteOpts.LastUpdated == 0 {
		remoteOpts.LastUpdated = c.Now().Unix()
	}

	profile, err := codec.NewProfile(profileType, name, src.Content, opts.RemotePath, remoteOpts)
	if err != nil {
		return err
	}

	data, err := c.GetCodec().Encode(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	logger.Info("encoded profile", "name", name, "type", profileType, "bytes", len(data))

	outputPath := opts.Output
	if outputPath == "" {
		outputPath = src.OutputPath(settings.Output.Extension)
	}
	if outputPath == "" {
		_, err := fmt.Fprintln(out, hex.EncodeToString(data))
		return err
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	fmt.Fprintf(out, "Encoded profile saved to: %s\n", outputPath)
	fmt.Fprintf(out, "Size: %d bytes\n", len(data))

	return nil
}

func resolveSource(opts encodeOptions) (source.Source, error) {
	switch {
	case opts.Config != "" && opts.ConfigFile != "":
		return source.Source{}, errConflictingConfig
	case opts.ConfigFile != "":
		return source.ReadFile(opts.ConfigFile)
	case opts.Config != "":
		return source.Resolve(opts.Config), nil
	default:
		return source.Source{}, errMissingConfig
	}
}
