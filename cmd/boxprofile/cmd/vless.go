package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ssargent/boxprofile/pkg/codec"
	"github.com/ssargent/boxprofile/pkg/config"
	"github.com/ssargent/boxprofile/pkg/di"
	"github.com/ssargent/boxprofile/pkg/vless"
)

var (
	errMissingURL      = errors.New("--url is required")
	errMissingTemplate = errors.New("--template is required")
)

// vlessOptions is the input of the vless command
type vlessOptions struct {
	URL      string
	Template string
	Output   string
	Encode   bool
}

// vlessCmd represents the vless command
var vlessCmd = &cobra.Command{
	Use:   "vless",
	Short: "Generate a sing-box configuration from a VLESS URL",
	Long: `Generate a sing-box configuration by patching the first vless outbound
of a JSON or JSONC template with the server, credentials, TLS/Reality and
transport settings of a vless:// share link.

The configuration is written to --output, or to a file named after the
server. With --encode a local profile is also written beside it.

Examples:
  boxprofile vless -u 'vless://uuid@host:443?security=reality&pbk=KEY&sid=ab#Home' -t template.json
  boxprofile vless -u "$LINK" -t template.jsonc -o home.json --encode`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := prepare(cmd)
		if err != nil {
			return err
		}

		return runVLESS(cmd.OutOrStdout(), container, settings, readVLESSOptions(viper.GetViper()))
	},
}

func init() {
	rootCmd.AddCommand(vlessCmd)
	addVLESSFlags(vlessCmd.Flags())
}

func addVLESSFlags(fs *pflag.FlagSet) {
	fs.StringP("url", "u", "", "VLESS URL for connection (required)")
	fs.StringP("template", "t", "", "Path to JSON template file (required)")
	fs.StringP("output", "o", "", "Path for saving configuration (default: generated from server name)")
	fs.Bool("encode", false, "Also encode the configuration as a local profile")
}

func readVLESSOptions(v *viper.Viper) vlessOptions {
	return vlessOptions{
		URL:      v.GetString("url"),
		Template: v.GetString("template"),
		Output:   v.GetString("output"),
		Encode:   v.GetBool("encode"),
	}
}

// runVLESS generates the configuration and optionally its encoded profile
func runVLESS(out io.Writer, c *di.Container, settings *config.Config, opts vlessOptions) error {
	if opts.URL == "" {
		return errMissingURL
	}
	if opts.Template == "" {
		return errMissingTemplate
	}

	link, err := vless.Parse(opts.URL)
	if err != nil {
		return fmt.Errorf("VLESS URL parsing error: %w", err)
	}
	fmt.Fprintf(out, "Successfully parsed VLESS URL for server: %s\n", link.Name)
	fmt.Fprintf(out, "  Server: %s:%d\n", link.Server, link.Port)
	fmt.Fprintf(out, "  UUID: %s\n", link.UUID)
	fmt.Fprintf(out, "  Security: %s\n", link.Security)
	if link.SNI != "" {
		fmt.Fprintf(out, "  SNI: %s\n", link.SNI)
	}

	template, err := vless.LoadTemplate(opts.Template)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded template: %s\n", opts.Template)

	if err := vless.Apply(template, link); err != nil {
		return fmt.Errorf("configuration update error: %w", err)
	}
	fmt.Fprintf(out, "VLESS outbound configuration updated\n")

	data, err := vless.Marshal(template)
	if err != nil {
		return err
	}

	outputPath := opts.Output
	if outputPath == "" {
		outputPath = vless.SanitizeFilename(link.Name)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("file saving error: %w", err)
	}
	fmt.Fprintf(out, "Configuration saved to: %s\n", outputPath)
	c.GetLogger().Debug("generated config", "server", link.Server, "port", link.Port, "transport", link.Transport)

	if !opts.Encode {
		return nil
	}

	profilePath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + settings.Output.Extension
	name := link.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	}

	profile, err := codec.NewLocalProfile(name, string(data))
	if err != nil {
		return err
	}
	encoded, err := c.GetCodec().Encode(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	if err := os.WriteFile(profilePath, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	fmt.Fprintf(out, "Encoded profile saved to: %s\n", profilePath)
	fmt.Fprintf(out, "Size: %d bytes\n", len(encoded))

	return nil
}
