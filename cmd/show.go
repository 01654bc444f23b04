package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/suburbscope/internal/dataset"
	"github.com/KaramelBytes/suburbscope/internal/utils"
)

var (
	showFilters filterFlags
	showJSON    bool
)

var showCmd = &cobra.Command{
	Use:   "show [suburb]",
	Short: "Show investor details for a suburb in the filtered selection",
	Long: `Show investor details for a suburb in the filtered selection.

Without a suburb name the first suburb matching the filters is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		c, sel, err := showFilters.apply(cmd, ds)
		if err != nil {
			return err
		}
		names := sel.SuburbNames()
		if len(names) == 0 {
			return fmt.Errorf("no suburbs match the filters (%s)", describe(c))
		}
		name := names[0]
		if len(args) == 1 {
			name = strings.TrimSpace(args[0])
		}
		row, err := sel.Lookup(name)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if showJSON {
			b, err := utils.PrettyJSON(struct {
				Suburb dataset.Suburb  `json:"suburb"`
				Fields []dataset.Field `json:"fields"`
			}{row, dataset.Detail(row)})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintln(out, detailPanel(row))
		return nil
	},
}

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#2980B9", Dark: "#8db0fe"}).
			Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Bold(true)
	panelLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	panelValueStyle = lipgloss.NewStyle().Bold(true)
)

// detailPanel renders the six investor fields in a bordered box.
func detailPanel(row dataset.Suburb) string {
	title := fmt.Sprintf("Investor Details: %s", row.Name)
	if row.State != "" || row.PropertyType != "" {
		title += fmt.Sprintf(" (%s %s)", row.State, row.PropertyType)
	}
	fields := dataset.Detail(row)
	width := 0
	for _, f := range fields {
		if w := lipgloss.Width(f.Label); w > width {
			width = w
		}
	}
	lines := []string{panelTitleStyle.Render(title), ""}
	for _, f := range fields {
		label := panelLabelStyle.Width(width + 1).Render(f.Label + ":")
		lines = append(lines, fmt.Sprintf("%s %s %s", f.Icon, label, panelValueStyle.Render(f.Display())))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func init() {
	rootCmd.AddCommand(showCmd)
	showFilters.register(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the row and detail fields as JSON")
}
