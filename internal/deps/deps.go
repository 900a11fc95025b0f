package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"rovercam/internal/api"
	"rovercam/internal/config"
)

// Requirement defines an external dependency the daemon relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Requirements returns the external binaries for the given
// configuration. cloudflared is only required when the tunnel is
// enabled.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "cloudflared",
			Command:     cfg.Tunnel.Binary,
			Description: "Cloudflare quick tunnel for remote access",
			Optional:    !cfg.Tunnel.Enabled,
		},
	}
}

// Check evaluates the configured requirements and reports availability.
func Check(cfg *config.Config) []api.DependencyStatus {
	return CheckBinaries(Requirements(cfg))
}

// CheckBinaries evaluates the provided requirements and reports
// availability.
func CheckBinaries(requirements []Requirement) []api.DependencyStatus {
	results := make([]api.DependencyStatus, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := api.DependencyStatus{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
