package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newVersionCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show wakesim build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := versionPayload{
				Tool:      "wakesim",
				Version:   version,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			switch format {
			case "pretty":
				colored, err := opts.colorEnabled(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				c := color.New(color.FgYellow, color.Bold)
				if colored {
					c.EnableColor()
				} else {
					c.DisableColor()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %s)\n", p.Tool, c.Sprint(p.Version), p.GoVersion, p.Platform)
				return nil
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			default:
				return fmt.Errorf("unsupported --format %q (expected: pretty|json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")

	return cmd
}
