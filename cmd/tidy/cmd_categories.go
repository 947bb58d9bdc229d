package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var categoriesFlags struct {
	rules string
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print the category table",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().StringVar(&categoriesFlags.rules, "rules", "", "YAML rules file overriding the category table")
}

func runCategories(cmd *cobra.Command, _ []string) error {
	cfg, err := loadDotConfig()
	if err != nil {
		return err
	}
	rulesPath := cfg.Rules
	if categoriesFlags.rules != "" {
		rulesPath = categoriesFlags.rules
	}

	org, err := newOrganizer(rulesPath, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, c := range org.Rules() {
		if len(c.Extensions) == 0 {
			fmt.Fprintf(out, "%s: (everything else)\n", c.Name)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", c.Name, strings.Join(c.Extensions, " "))
	}
	return nil
}
