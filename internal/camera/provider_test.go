package camera

import (
	"errors"
	"testing"
)

func TestDeviceNode(t *testing.T) {
	tests := []struct {
		device string
		want   string
	}{
		{"/dev/video0", "/dev/video0"},
		{"0", "/dev/video0"},
		{"2", "/dev/video2"},
		{" /dev/video1", "/dev/video1"},
		{"-1", ""},
		{"camera", ""},
	}
	for _, tc := range tests {
		if got := DeviceNode(tc.device); got != tc.want {
			t.Errorf("DeviceNode(%q) = %q, want %q", tc.device, got, tc.want)
		}
	}
}

func TestDetectMissingNode(t *testing.T) {
	provider := Detect("/dev/video-does-not-exist")
	if provider.Available() {
		t.Fatal("expected missing node to be unavailable")
	}
	if provider.Reason() == "" {
		t.Fatal("expected a reason for unavailability")
	}
	if _, err := provider.Open(Settings{}); !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("open error = %v, want ErrDeviceUnavailable", err)
	}
}

func TestDetectRejectsBogusDeviceValue(t *testing.T) {
	provider := Detect("not-a-device")
	if provider.Available() {
		t.Fatal("expected bogus device value to be unavailable")
	}
}
