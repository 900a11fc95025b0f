package daemon

import (
	"context"
	"testing"

	"github.com/pilebones/go-udev/netlink"

	"rovercam/internal/config"
	"rovercam/internal/logging"
	"rovercam/internal/testsupport"
)

func TestHotplugMonitorStopWithoutStart(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	monitor := newHotplugMonitor(cfg, logging.NewNop(), nil)
	monitor.Stop()
	if monitor.Running() {
		t.Fatal("expected monitor to report not running")
	}
}

func TestHotplugMonitorSkipsUnresolvableDevice(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Camera.Device = "not-a-device"
	})
	monitor := newHotplugMonitor(cfg, logging.NewNop(), nil)
	if err := monitor.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if monitor.Running() {
		t.Fatal("monitor must not run without a device node to watch")
	}
}

func TestExtractDeviceName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	monitor := newHotplugMonitor(cfg, logging.NewNop(), nil)

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "devname absolute",
			env:  map[string]string{"DEVNAME": "/dev/video0"},
			want: "/dev/video0",
		},
		{
			name: "devname relative",
			env:  map[string]string{"DEVNAME": "video2"},
			want: "/dev/video2",
		},
		{
			name: "devpath fallback",
			env:  map[string]string{"DEVPATH": "/devices/platform/usb/video4linux/video0"},
			want: "/dev/video0",
		},
		{
			name: "nothing usable",
			env:  map[string]string{},
			want: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := monitor.extractDeviceName(netlink.UEvent{Env: tc.env})
			if got != tc.want {
				t.Fatalf("extractDeviceName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHotplugEventFiltersOtherDevices(t *testing.T) {
	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Camera.Device = "/dev/video0"
	})
	var calls []string
	monitor := newHotplugMonitor(cfg, logging.NewNop(), func(_ context.Context, action string) {
		calls = append(calls, action)
	})

	monitor.handleEvent(context.Background(), netlink.UEvent{
		Action: netlink.ADD,
		Env:    map[string]string{"DEVNAME": "/dev/video5"},
	})
	if len(calls) != 0 {
		t.Fatal("handler must not fire for other devices")
	}

	monitor.handleEvent(context.Background(), netlink.UEvent{
		Action: netlink.ADD,
		Env:    map[string]string{"DEVNAME": "/dev/video0"},
	})
	monitor.handleEvent(context.Background(), netlink.UEvent{
		Action: netlink.REMOVE,
		Env:    map[string]string{"DEVNAME": "/dev/video0"},
	})
	if len(calls) != 2 || calls[0] != "add" || calls[1] != "remove" {
		t.Fatalf("calls = %v", calls)
	}
}
