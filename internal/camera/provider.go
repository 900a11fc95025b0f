package camera

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Provider abstracts whether camera support is usable on this host.
// Detection happens once at startup; the two implementations let the
// rest of the daemon treat "support missing" as a state rather than a
// flag to branch on.
type Provider interface {
	// Available reports whether Open can be expected to succeed.
	Available() bool
	// Reason explains unavailability for status output. Empty when
	// available.
	Reason() string
	// Open opens the capture device with the given settings.
	Open(settings Settings) (Device, error)
}

// Detect probes the configured device node and returns a provider that
// can open it, or an unavailable provider carrying the reason. A device
// appearing later (hotplug) warrants a fresh Detect call.
func Detect(device string) Provider {
	node := DeviceNode(device)
	if node == "" {
		return Unavailable(fmt.Sprintf("device %q is not a path or index", device))
	}
	info, err := os.Stat(node)
	if err != nil {
		if os.IsNotExist(err) {
			return Unavailable(fmt.Sprintf("device node %s does not exist", node))
		}
		return Unavailable(fmt.Sprintf("device node %s: %v", node, err))
	}
	if info.Mode()&os.ModeDevice == 0 {
		return Unavailable(fmt.Sprintf("%s is not a device node", node))
	}
	return gocvProvider{}
}

// DeviceNode resolves a device setting to the filesystem node it
// refers to. Bare integer indexes map onto /dev/video<N>. Returns ""
// when the value is neither a path nor an index.
func DeviceNode(device string) string {
	device = strings.TrimSpace(device)
	if strings.HasPrefix(device, "/") {
		return device
	}
	if index, err := strconv.Atoi(device); err == nil && index >= 0 {
		return fmt.Sprintf("/dev/video%d", index)
	}
	return ""
}

// Unavailable returns a provider whose Open always fails with
// ErrDeviceUnavailable.
func Unavailable(reason string) Provider {
	return unavailableProvider{reason: reason}
}

type unavailableProvider struct {
	reason string
}

func (unavailableProvider) Available() bool { return false }

func (p unavailableProvider) Reason() string { return p.reason }

func (p unavailableProvider) Open(Settings) (Device, error) {
	return nil, fmt.Errorf("%w: %s", ErrDeviceUnavailable, p.reason)
}
