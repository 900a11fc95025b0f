package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"rovercam/internal/api"
	"rovercam/internal/ipc"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var follow bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent daemon log events",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be at least 1")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				resp, err := client.LogTail(ipc.LogTailRequest{Limit: limit})
				if err != nil {
					return err
				}
				printLogEvents(stdout, resp.Events, jsonOutput, cmd)
				if !follow {
					return nil
				}

				cursor := resp.Next
				for {
					if err := cmd.Context().Err(); err != nil {
						return err
					}
					resp, err := client.LogTail(ipc.LogTailRequest{
						Since:      cursor,
						Limit:      limit,
						Follow:     true,
						WaitMillis: 5000,
					})
					if err != nil {
						return err
					}
					printLogEvents(stdout, resp.Events, jsonOutput, cmd)
					cursor = resp.Next
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Maximum number of events per fetch")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new events")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON")
	return cmd
}

func printLogEvents(out io.Writer, events []api.LogEvent, jsonOutput bool, cmd *cobra.Command) {
	for _, event := range events {
		if jsonOutput {
			_ = writeJSON(cmd, event)
			continue
		}
		fmt.Fprintln(out, formatLogEvent(event))
	}
}

func formatLogEvent(event api.LogEvent) string {
	var sb strings.Builder
	sb.WriteString(event.Timestamp.Local().Format("15:04:05.000"))
	sb.WriteString(" ")
	sb.WriteString(fmt.Sprintf("%-5s", strings.ToUpper(event.Level)))
	if event.Component != "" {
		sb.WriteString(" [")
		sb.WriteString(event.Component)
		sb.WriteString("]")
	}
	sb.WriteString(" ")
	sb.WriteString(event.Message)

	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for key := range event.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			sb.WriteString(" ")
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(event.Fields[key])
		}
	}
	return sb.String()
}
