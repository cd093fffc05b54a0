package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kilianp07/rolloutplan/core/palette"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "List the plan colours",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := lipgloss.NewRenderer(cmd.OutOrStdout())
		for _, c := range palette.All() {
			sw := r.NewStyle().Background(lipgloss.Color(c.Hex())).Render("    ")
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %-12s %s\n", sw, c.Name(), c.Hex()); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(paletteCmd)
}
