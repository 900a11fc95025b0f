// Package tunnel exposes the control panel through a cloudflared quick
// tunnel. The manager owns the cloudflared process: it starts it,
// scrapes the public URL from its output, and terminates it on
// shutdown.
package tunnel
