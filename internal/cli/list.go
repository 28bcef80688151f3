package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BenjaminSRussell/macwinua"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:       "list [versions|platforms|os-versions|tls-profiles]",
	Short:     "Show what the agent table contains",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"versions", "platforms", "os-versions", "tls-profiles"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ua, err := newGenerator()
		if err != nil {
			return err
		}

		what := ""
		if len(args) == 1 {
			what = args[0]
		}
		out := cmd.OutOrStdout()

		if what == "" || what == "versions" {
			fmt.Fprintf(out, "versions: %s\n", strings.Join(ua.AvailableVersions(), ", "))
		}
		if what == "" || what == "platforms" {
			fmt.Fprintf(out, "platforms: %s\n", strings.Join(ua.AvailablePlatforms(), ", "))
		}
		if what == "" || what == "os-versions" {
			writeOSVersions(out, ua.AvailableOSVersions())
		}
		if what == "" || what == "tls-profiles" {
			fmt.Fprintln(out, "tls-profiles:")
			for _, p := range macwinua.TLSProfiles() {
				fmt.Fprintf(out, "  - %s (Chrome %d+)\n", p.Name, p.MinMajor)
			}
		}
		return nil
	},
}

func writeOSVersions(w io.Writer, osVersions map[string][]string) {
	keys := make([]string, 0, len(osVersions))
	for k := range osVersions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "os-versions:")
	for _, k := range keys {
		fmt.Fprintf(w, "  %s:\n", k)
		for _, v := range osVersions[k] {
			fmt.Fprintf(w, "    - %s\n", v)
		}
	}
}
