// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/petar-djukic/go-patcher/internal/render"
	"github.com/petar-djukic/go-patcher/pkg/assistant"
)

// newSuggestCmd creates the "suggest" command.
func newSuggestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the model for a diff and show it",
		Long: "Suggest sends the file and instruction to the model, applies the diff it returns, " +
			"and retries with feedback until every hunk applies and the result parses.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSuggest(cmd)
		},
	}

	cmd.Flags().StringP("file", "f", "", "File to change (required)")
	cmd.Flags().StringP("prompt", "p", "", "What to change (required)")
	cmd.Flags().Bool("write", false, "Write the patched file")
	cmd.Flags().Bool("commit", false, "Commit the written file (implies --write)")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *app) runSuggest(cmd *cobra.Command) error {
	file, _ := cmd.Flags().GetString("file")
	prompt, _ := cmd.Flags().GetString("prompt")
	write, _ := cmd.Flags().GetBool("write")
	commit, _ := cmd.Flags().GetBool("commit")
	asJSON, _ := cmd.Flags().GetBool("json")
	write = write || commit

	as, err := assistant.New(assistant.Config{
		WorkDir:     a.workDir(),
		Model:       a.v.GetString("model"),
		Region:      a.v.GetString("region"),
		Profile:     a.v.GetString("profile"),
		MaxRetries:  retryLimit(a.v.GetInt("max-retries")),
		MaxTokens:   a.v.GetInt("max-tokens"),
		NoGit:       a.v.GetBool("no-git") || !commit,
		AutoCommit:  commit,
		DirtyCommit: a.v.GetBool("dirty-commit"),
		Logger:      a.log,
	})
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := as.Suggest(ctx, file, prompt)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		if result != nil && asJSON {
			printJSON(cmd, result)
		}
		return err
	}

	if asJSON {
		printJSON(cmd, result)
	} else {
		fmt.Fprint(cmd.OutOrStdout(), render.Colorize(result.Diff))
		fmt.Fprintf(cmd.ErrOrStderr(), "%s (retries: %d, tokens: %d)\n",
			render.Summary(result.Report), result.Retries, result.TokensUsed.Total())
		for _, e := range result.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", e)
		}
	}

	if !write || result.Report.Applied == 0 {
		return result.Reject()
	}
	return result.Accept(prompt)
}

// printJSON outputs v as indented JSON to stdout.
func printJSON(cmd *cobra.Command, v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error marshaling result: %v\n", err)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
}
