package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newTranscriptCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "transcript [URL|ID]",
		Short: "Fetch a YouTube transcript (captions, timed text, then speech-to-text)",
		Example: `  learnnext transcript "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  learnnext transcript dQw4w9WgXcQ -o json
  learnnext transcript dQw4w9WgXcQ --save transcript.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.assistant.Transcript(cmd.Context(), args[0])
			if err != nil {
				if flagString(cmd, "output") == outputJSON {
					_ = printOutput(cmd, "", result)
				}
				return err
			}

			if path, _ := cmd.Flags().GetString("save"); path != "" {
				if err := os.WriteFile(path, []byte(result.Text), 0o644); err != nil {
					return err
				}
			}
			return printOutput(cmd, result.Text, result)
		},
	}
	c.Flags().String("save", "", "also write the transcript text to this file")
	return c
}
