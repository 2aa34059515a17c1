package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"netxlate/internal/descriptor"
	"netxlate/internal/version"
)

type versionPayload struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version"`
	Dialects  []string `json:"dialects"`
	GitCommit string   `json:"git_commit,omitempty"`
	BuildDate string   `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show netxlate build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		full, _ := cmd.Flags().GetBool("full")
		showHash, _ := cmd.Flags().GetBool("hash")
		showDate, _ := cmd.Flags().GetBool("date")
		showHash, showDate = showHash || full, showDate || full

		p := versionPayload{Tool: "netxlate", Version: version.Plain, Dialects: descriptor.Builtin()}
		if showHash {
			p.GitCommit = orUnknown(version.GitCommit)
		}
		if showDate {
			p.BuildDate = orUnknown(version.BuildDate)
		}

		out := cmd.OutOrStdout()
		switch strings.ToLower(format) {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		case "pretty":
			fmt.Fprintf(out, "netxlate %s\n", version.Colored())
			fmt.Fprintf(out, "dialects: %s\n", strings.Join(p.Dialects, ", "))
			if showHash {
				fmt.Fprintf(out, "commit: %s\n", p.GitCommit)
			}
			if showDate {
				fmt.Fprintf(out, "built:  %s\n", p.BuildDate)
			}
			return nil
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	},
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show all recorded build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
