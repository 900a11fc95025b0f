package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rovercam/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently relayed movement commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be at least 1")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp.Entries)
				}

				stdout := cmd.OutOrStdout()
				if len(resp.Entries) == 0 {
					fmt.Fprintln(stdout, "No commands recorded yet")
					return nil
				}

				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					result := "ok"
					if !entry.OK {
						result = "failed"
					}
					rows = append(rows, []string{
						entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
						entry.Direction,
						entry.Command,
						result,
						entry.Detail,
					})
				}
				table := renderTable(
					[]string{"Time", "Direction", "Command", "Result", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")
	return cmd
}
