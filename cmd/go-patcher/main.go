// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command go-patcher applies unified diffs to files by matching their
// content rather than their line numbers, and can ask a Bedrock model to
// write the diff.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/petar-djukic/go-patcher/internal/logging"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by every command.
type app struct {
	v        *viper.Viper
	log      *zap.Logger
	closeLog func() error
}

func (a *app) workDir() string {
	return a.v.GetString("work-dir")
}

// newRootCmd builds the command tree with its own viper instance.
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop(), closeLog: func() error { return nil }}

	rootCmd := &cobra.Command{
		Use:          "go-patcher",
		Short:        "Content-anchored unified diff patcher",
		Long:         "go-patcher applies unified diffs by locating each hunk's context in the file, so diffs with wrong or missing line numbers still apply.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeLog()
		},
	}

	// Global flags.
	flags := rootCmd.PersistentFlags()
	flags.String("work-dir", ".", "Directory relative paths resolve against")
	flags.String("model", "", "Bedrock model ID")
	flags.String("region", "", "AWS region for Bedrock")
	flags.String("profile", "", "AWS credential profile")
	flags.Int("max-retries", 3, "Maximum feedback loop iterations (0 disables retries)")
	flags.Int("max-tokens", 4096, "Maximum tokens for LLM response")
	flags.Bool("no-git", false, "Disable git operations")
	flags.Bool("dirty-commit", false, "Commit pending changes to target files before writing")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-file", "", "Write logs to this file (\"-\" for stderr)")
	flags.Bool("debug", false, "Verbose logging (to stderr unless --log-file is set)")
	flags.String("env-file", ".env", "Dotenv file loaded before reading the environment")

	flags.VisitAll(func(f *pflag.Flag) {
		_ = a.v.BindPFlag(f.Name, f)
	})

	// Env vars: GO_PATCHER_MODEL, GO_PATCHER_LOG_FILE, etc.
	a.v.SetEnvPrefix("GO_PATCHER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	rootCmd.AddCommand(newApplyCmd(a))
	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newSuggestCmd(a))
	rootCmd.AddCommand(newUndoCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setup loads the dotenv and config files, then builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(a.v.GetString("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading env file: %w", err)
	}

	workDir, err := filepath.Abs(a.workDir())
	if err != nil {
		return fmt.Errorf("resolving work dir: %w", err)
	}
	a.v.Set("work-dir", workDir)

	// Config file is optional.
	a.v.SetConfigName(".go-patcher")
	a.v.SetConfigType("yaml")
	a.v.AddConfigPath(workDir)
	a.v.AddConfigPath(".")
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if a.v.GetBool("no-color") {
		color.NoColor = true
	}

	debug := a.v.GetBool("debug")
	log, closeLog, err := logging.New(logSink(a.v.GetString("log-file"), debug), debug)
	if err != nil {
		return err
	}
	a.log, a.closeLog = log, closeLog
	a.log.Debug("configured",
		zap.String("command", cmd.Name()),
		zap.String("work_dir", workDir),
		zap.String("config", a.v.ConfigFileUsed()))
	return nil
}

// logSink picks the log destination. Debug without a log file goes to
// stderr.
func logSink(path string, debug bool) string {
	if path == "" && debug {
		return logging.Stderr
	}
	return path
}

// retryLimit maps the max-retries setting onto assistant.Config, where 0
// means the library default. On the command line 0 means no retries.
func retryLimit(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print go-patcher version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "go-patcher %s\n", version)
		},
	}
}
