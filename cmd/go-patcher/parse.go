// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/go-patcher/internal/diffparse"
	"github.com/petar-djukic/go-patcher/pkg/types"
)

// parsedFile is the JSON form of one file's hunks.
type parsedFile struct {
	Path  string       `json:"path,omitempty"`
	Hunks []types.Hunk `json:"hunks"`
}

// newParseCmd creates the "parse" command.
func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Print the hunks of a diff as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			diffPath, _ := cmd.Flags().GetString("diff")
			diffText, err := readInput(cmd, diffPath)
			if err != nil {
				return err
			}

			var out []parsedFile
			for _, part := range diffparse.SplitFiles(diffText) {
				hunks, err := diffparse.Parse(part.Body)
				if err != nil {
					if target := part.Header.Target(); target != "" {
						return fmt.Errorf("%s: %w", target, err)
					}
					return err
				}
				out = append(out, parsedFile{Path: part.Header.Target(), Hunks: hunks})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().String("diff", "", "Diff file to parse, \"-\" for stdin (required)")
	_ = cmd.MarkFlagRequired("diff")
	return cmd
}
