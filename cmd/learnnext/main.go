package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "learnnext",
		Short:         "LearnNext study assistant",
		Long:          "Transcripts, summaries, quizzes, flashcards, tutoring and wellness check-ins from the command line, over HTTP or as an MCP server.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newTranscriptCmd())
	rootCmd.AddCommand(newSummarizeCmd())
	rootCmd.AddCommand(newQuizCmd())
	rootCmd.AddCommand(newFlashcardsCmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newCodeCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newWellnessCmd())
	rootCmd.AddCommand(newUsageCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMCPCmd())
	return rootCmd
}
