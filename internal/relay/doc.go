// Package relay forwards movement commands to the motor controller
// over short-lived TCP connections. Each direction maps onto a single
// ASCII command byte understood by the controller firmware.
package relay
