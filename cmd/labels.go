package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/spanmark/internal/config"
	"github.com/zjrosen/spanmark/internal/labels"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Show or add label categories",
}

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured label categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return listLabels(cmd.OutOrStdout(), cfg)
	},
}

var (
	labelColor   string
	labelCaption string
)

var labelsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a label category to the config file",
	Long: `Add a label category to the config file. Other sections of the file and
their comments are left untouched.

Examples:
  spanmark labels add EVENT --color 200,120,255 --caption Event`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := parseColor(labelColor)
		if err != nil {
			return err
		}
		cat := config.CategoryConfig{Name: args[0], Color: color, Caption: labelCaption}
		if cat.Caption == "" {
			cat.Caption = cat.Name
		}
		path := configPath()
		if err := config.AddCategory(path, cat, cfg.GetCategories()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s\n", cat.Name, path)
		return nil
	},
}

func init() {
	labelsAddCmd.Flags().StringVar(&labelColor, "color", "150,150,150", "tint as r,g,b")
	labelsAddCmd.Flags().StringVar(&labelCaption, "caption", "", "caption drawn after spans (default: NAME)")
	labelsCmd.AddCommand(labelsListCmd, labelsAddCmd)
	rootCmd.AddCommand(labelsCmd)
}

func listLabels(w io.Writer, c config.Config) error {
	active := c.InitialLabel()
	for _, cat := range c.GetCategories() {
		marker := " "
		if cat.Name == active {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%s %-12s %s  %s\n", marker, cat.Name,
			labels.RGBFrom(cat.Color).Hex(), cat.Caption); err != nil {
			return err
		}
	}
	return nil
}

// parseColor parses "r,g,b".
func parseColor(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("color %q: want r,g,b", s)
	}
	color := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("color %q: %w", s, err)
		}
		color[i] = v
	}
	return color, nil
}
