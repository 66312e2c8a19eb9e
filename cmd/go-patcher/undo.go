// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	gitpkg "github.com/petar-djukic/go-patcher/internal/git"
)

// newUndoCmd creates the "undo" command.
func newUndoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Revert the last go-patcher commit",
		Long: "Undo performs a soft reset of the last commit if it was made by go-patcher. " +
			"With --restore the patched files are also put back to their previous content.",
		RunE: func(cmd *cobra.Command, args []string) error {
			restore, _ := cmd.Flags().GetBool("restore")

			repo, err := gitpkg.Open(gitpkg.Config{WorkDir: a.workDir()})
			if err != nil {
				return fmt.Errorf("opening repository: %w", err)
			}

			files, err := repo.Undo(restore)
			if err != nil {
				return fmt.Errorf("undo failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Reverted last go-patcher commit.")
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
			}
			return nil
		},
	}

	cmd.Flags().Bool("restore", false, "Also restore the files' previous content")
	return cmd
}
