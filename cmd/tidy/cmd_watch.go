package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/pelota/internal/organize"
)

var watchFlags struct {
	rules string
}

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Organize files as they arrive",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.rules, "rules", "", "YAML rules file overriding the category table")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadDotConfig()
	if err != nil {
		return err
	}
	dir := cfg.Directory
	if len(args) == 1 {
		dir = args[0]
	}
	rulesPath := cfg.Rules
	if watchFlags.rules != "" {
		rulesPath = watchFlags.rules
	}

	org, err := newOrganizer(rulesPath, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (ctrl-c to stop)\n", dir)
	return org.Watch(ctx, dir, func(mv organize.Move) {
		fmt.Fprintf(out, "  %s -> %s/\n", filepath.Base(mv.Source), mv.Category)
	})
}
