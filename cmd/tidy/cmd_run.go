package main

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/okian/pelota/internal/organize"
)

var runFlags struct {
	dryRun  bool
	verbose bool
	rules   string
}

var runCmd = &cobra.Command{
	Use:   "run [directory]",
	Short: "Organize a directory once",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.BoolVar(&runFlags.dryRun, "dry-run", false, "Show the plan without moving files")
	f.BoolVarP(&runFlags.verbose, "verbose", "v", false, "Print every move")
	f.StringVar(&runFlags.rules, "rules", "", "YAML rules file overriding the category table")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadDotConfig()
	if err != nil {
		return err
	}
	dir := cfg.Directory
	if len(args) == 1 {
		dir = args[0]
	}
	rulesPath := cfg.Rules
	if runFlags.rules != "" {
		rulesPath = runFlags.rules
	}
	verbose := cfg.Verbose || runFlags.verbose

	org, err := newOrganizer(rulesPath, cfg)
	if err != nil {
		return err
	}

	plan, stats, err := org.Organize(dir, runFlags.dryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(plan) == 0 {
		fmt.Fprintln(out, "No files to organize.")
		return nil
	}

	if verbose {
		for _, mv := range plan {
			fmt.Fprintf(out, "  %s -> %s/\n", filepath.Base(mv.Source), mv.Category)
		}
	}

	printSummary(cmd, stats, runFlags.dryRun)
	return nil
}

func printSummary(cmd *cobra.Command, stats organize.Stats, dryRun bool) {
	out := cmd.OutOrStdout()

	categories := make([]string, 0, len(stats.PerCategory))
	for c := range stats.PerCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fmt.Fprintln(out, "Summary:")
	for _, c := range categories {
		fmt.Fprintf(out, "  %s: %d\n", c, stats.PerCategory[c])
	}
	if dryRun {
		fmt.Fprintf(out, "%d files would be organized.\n", stats.Total)
		fmt.Fprintln(out, "Run without --dry-run to move them.")
		return
	}
	fmt.Fprintf(out, "%d files organized.\n", stats.Total)
}
