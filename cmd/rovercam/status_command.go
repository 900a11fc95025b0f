package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"rovercam/internal/api"
	"rovercam/internal/daemonctl"
	"rovercam/internal/deps"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show rover, camera, and link status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			client, err := ctx.dialClient()
			if err != nil {
				// Daemon down: report what can be checked locally.
				running, _, _ := daemonctl.ProcessInfo(ctx.socketPath())
				if running {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]any{
						"running":      false,
						"dependencies": deps.Check(ctx.configValue()),
					})
				}
				fmt.Fprintln(stdout, "Daemon is not running (start it with `rovercam start`)")
				fmt.Fprintln(stdout)
				renderDependencies(stdout, deps.Check(ctx.configValue()), shouldColorize(stdout))
				return nil
			}
			defer client.Close()

			resp, err := client.Status()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp.Status)
			}
			renderStatus(stdout, resp.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	return cmd
}

func renderStatus(out io.Writer, status api.StatusResponse) {
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Running", boolKind(status.Running, statusWarn), yesNo(status.Running), colorize))
	if status.PID > 0 {
		fmt.Fprintln(out, renderStatusLine("PID", statusInfo, fmt.Sprintf("%d", status.PID), colorize))
	}
	if !status.StartedAt.IsZero() {
		fmt.Fprintln(out, renderStatusLine("Started", statusInfo, status.StartedAt.Format("2006-01-02 15:04:05 MST"), colorize))
	}
	if status.LocalURL != "" {
		fmt.Fprintln(out, renderStatusLine("Local URL", statusInfo, status.LocalURL, colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Internet", boolKind(status.Internet, statusWarn), yesNo(status.Internet), colorize))
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Camera", colorize) {
		fmt.Fprintln(out, line)
	}
	cameraDetail := status.Camera.State
	if !status.Camera.Available && status.Camera.Reason != "" {
		cameraDetail = status.Camera.Reason
	}
	fmt.Fprintln(out, renderStatusLine("Device", statusInfo, status.Camera.Device, colorize))
	fmt.Fprintln(out, renderStatusLine("Capture", statusInfo,
		fmt.Sprintf("%dx%d @ %d fps", status.Camera.Width, status.Camera.Height, status.Camera.Framerate), colorize))
	fmt.Fprintln(out, renderStatusLine("Available", boolKind(status.Camera.Available, statusError), cameraDetail, colorize))
	fmt.Fprintln(out, renderStatusLine("Frame fresh", boolKind(status.Camera.FrameFresh, statusWarn), yesNo(status.Camera.FrameFresh), colorize))
	fmt.Fprintln(out, renderStatusLine("Viewers", statusInfo, fmt.Sprintf("%d", status.Sessions), colorize))
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Rover Link", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Controller", statusInfo, status.Relay.Target, colorize))
	fmt.Fprintln(out, renderStatusLine("Reachable", boolKind(status.Relay.Reachable, statusError), yesNo(status.Relay.Reachable), colorize))
	fmt.Fprintln(out, renderStatusLine("Commands sent", statusInfo, fmt.Sprintf("%d", status.HistoryCount), colorize))
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Tunnel", colorize) {
		fmt.Fprintln(out, line)
	}
	if !status.Tunnel.Enabled {
		fmt.Fprintln(out, renderStatusLine("Enabled", statusInfo, "no", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Enabled", statusOK, "yes", colorize))
		fmt.Fprintln(out, renderStatusLine("Running", boolKind(status.Tunnel.Running, statusWarn), yesNo(status.Tunnel.Running), colorize))
		if status.Tunnel.URL != "" {
			fmt.Fprintln(out, renderStatusLine("Public URL", statusOK, status.Tunnel.URL, colorize))
		}
	}
	fmt.Fprintln(out)

	renderDependencies(out, status.Dependencies, colorize)
}

func renderDependencies(out io.Writer, dependencies []api.DependencyStatus, colorize bool) {
	for _, line := range renderSectionHeader("Dependencies", colorize) {
		fmt.Fprintln(out, line)
	}
	if len(dependencies) == 0 {
		fmt.Fprintln(out, renderStatusLine("External tools", statusOK, "none required", colorize))
		return
	}
	for _, dep := range dependencies {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			fmt.Fprintln(out, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
			detail += " (optional)"
		}
		fmt.Fprintln(out, renderStatusLine(dep.Name, kind, detail, colorize))
	}
}

func boolKind(ok bool, bad statusKind) statusKind {
	if ok {
		return statusOK
	}
	return bad
}
