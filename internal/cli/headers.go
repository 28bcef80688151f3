package cli

import (
	"fmt"
	"strings"

	"github.com/BenjaminSRussell/macwinua"
	"github.com/BenjaminSRussell/macwinua/internal/export"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	platform        string
	platforms       []string
	chromeVersion   string
	osVersion       string
	extraHeaders    []string
	fullVersionList bool
	seed            int64
	format          string
	targetURL       string
)

var headersCmd = &cobra.Command{
	Use:   "headers",
	Short: "Generate a header set",
	Long:  `Pick an agent from the table and print its User-Agent, client hints and navigation headers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outFormat, err := export.ParseFormat(format)
		if err != nil {
			return err
		}

		extra, err := parseHeaderFlags(extraHeaders)
		if err != nil {
			return err
		}

		opts := macwinua.Options{
			Platform:        platform,
			Platforms:       platforms,
			ChromeVersion:   chromeVersion,
			OSVersion:       osVersion,
			ExtraHeaders:    extra,
			FullVersionList: fullVersionList,
		}
		if cmd.Flags().Changed("seed") {
			s := seed
			opts.Seed = &s
		}

		ua, err := newGenerator()
		if err != nil {
			return err
		}

		p, err := ua.Persona(opts)
		if err != nil {
			return fmt.Errorf("failed to generate headers: %w", err)
		}

		logger.Debug("generated headers",
			zap.String("platform", p.Agent.Platform.String()),
			zap.String("os_version", p.Agent.OSVersion),
			zap.String("chrome", p.Agent.Version.String()),
			zap.String("tls_profile", p.TLSProfile.Name),
		)

		return export.WriteHeaders(cmd.OutOrStdout(), p.Headers, outFormat, export.Options{URL: targetURL})
	},
}

func init() {
	headersCmd.Flags().StringVarP(&platform, "platform", "p", "", "Platform: mac/win (default random)")
	headersCmd.Flags().StringSliceVar(&platforms, "platforms", nil, "Pick the platform at random from this set")
	headersCmd.Flags().StringVarP(&chromeVersion, "chrome-version", "c", "", "Chrome major version or 'latest' (default random)")
	headersCmd.Flags().StringVar(&osVersion, "os-version", "", "Exact OS version, e.g. 'Mac OS X 14_0'")
	headersCmd.Flags().StringArrayVarP(&extraHeaders, "header", "H", nil, "Extra header as 'Name: value' or Name=value (repeatable)")
	headersCmd.Flags().BoolVar(&fullVersionList, "full-version-list", false, "Also emit sec-ch-ua-full-version-list")
	headersCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for reproducible selection")
	headersCmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json/yaml/http/curl")
	headersCmd.Flags().StringVar(&targetURL, "url", "", "Request URL for curl output")
}

// parseHeaderFlags accepts "Name: value" and "Name=value"
func parseHeaderFlags(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(raw))
	for _, h := range raw {
		sep := strings.IndexAny(h, ":=")
		if sep <= 0 {
			return nil, fmt.Errorf("invalid header %q: want 'Name: value' or Name=value", h)
		}
		out[strings.TrimSpace(h[:sep])] = strings.TrimSpace(h[sep+1:])
	}
	return out, nil
}
