package main

import (
	"fmt"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/spf13/cobra"
)

func newUsageCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "usage",
		Short: "Show per-feature usage counts and recent events",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			usage, err := a.assistant.Usage(cmd.Context())
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("events")
			var events []analytics.Event
			if limit > 0 {
				events, err = a.assistant.Events(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}

			var b strings.Builder
			for _, kind := range analytics.Kinds {
				fmt.Fprintf(&b, "%-12s %d\n", kind, usage.Counts[kind])
			}
			fmt.Fprintf(&b, "%-12s %d", "total", usage.Total)
			for _, event := range events {
				fmt.Fprintf(&b, "\n%s  %-12s %v", event.Timestamp.Format("2006-01-02 15:04:05"), event.Kind, event.Payload)
			}
			return printOutput(cmd, b.String(), map[string]any{"usage": usage, "events": events})
		},
	}
	c.Flags().Int("events", 0, "also list this many recent events")
	return c
}
