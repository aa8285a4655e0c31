// Package cli implements the uidump command-line tool.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/uidump/internal/hierarchy"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the uidump command tree.
func NewRootCmd() *cobra.Command {
	var strict bool
	root := &cobra.Command{
		Use:          "uidump",
		Short:        "Inspect Android UI hierarchy dumps",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&strict, "strict", false, "Fail on nodes whose bounds do not parse")

	load := func(cmd *cobra.Command, path string) (*hierarchy.Tree, error) {
		log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
		tree, err := hierarchy.ParseFile(path, hierarchy.Options{Strict: strict, Log: log})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		return tree, nil
	}

	root.AddCommand(
		newTreeCmd(load),
		newNodeCmd(load),
		newPositionCmd(load),
		newQueryCmd(load),
		newReportCmd(load),
	)
	return root
}

type loader func(cmd *cobra.Command, path string) (*hierarchy.Tree, error)

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
