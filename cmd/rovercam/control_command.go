package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rovercam/internal/ipc"
	"rovercam/internal/relay"
)

func newControlCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "control <direction>",
		Aliases: []string{"move", "drive"},
		Short:   "Send a movement command to the rover",
		Long: "Send a movement command to the rover through the daemon.\n" +
			"Valid directions: " + strings.Join(relay.DirectionNames(), ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate locally for a fast error before dialing.
			if _, err := relay.ParseDirection(args[0]); err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Control(args[0])
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				result := resp.Result
				if result.OK {
					fmt.Fprintf(stdout, "Sent %s (command %s)\n", result.Direction, result.Command)
					return nil
				}
				message := strings.TrimSpace(result.Message)
				if message == "" {
					message = "relay send failed"
				}
				return fmt.Errorf("command %s not delivered: %s", result.Direction, message)
			})
		},
	}
}
