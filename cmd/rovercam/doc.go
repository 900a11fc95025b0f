// Package main hosts the rovercam CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into IPC
// calls against the daemon: lifecycle control, movement commands, status
// rendering, history inspection, log tailing, and configuration
// scaffolding. It centralizes configuration resolution and socket
// discovery so subcommands can focus on user experience.
package main
