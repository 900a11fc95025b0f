package relay

import (
	"io"
	"net"
	"testing"
	"time"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{"up", DirectionUp, false},
		{"STOP", DirectionStop, false},
		{" left ", DirectionLeft, false},
		{"sideways", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		got, err := ParseDirection(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDirection(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDirection(%q): %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDirectionCommandBytes(t *testing.T) {
	tests := []struct {
		direction Direction
		want      byte
	}{
		{DirectionUp, 'F'},
		{DirectionDown, 'B'},
		{DirectionLeft, 'L'},
		{DirectionRight, 'R'},
		{DirectionStop, 'S'},
	}
	for _, tc := range tests {
		got, err := tc.direction.Command()
		if err != nil {
			t.Fatalf("Command(%q): %v", tc.direction, err)
		}
		if got != tc.want {
			t.Errorf("Command(%q) = %c, want %c", tc.direction, got, tc.want)
		}
	}
}

func TestSendWritesCommandByte(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	client := NewClient(listener.Addr().String(), time.Second, 500*time.Millisecond, nil)
	if err := client.Send(DirectionUp); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case data := <-received:
		if string(data) != "F" {
			t.Fatalf("controller received %q, want %q", data, "F")
		}
	case <-time.After(time.Second):
		t.Fatal("controller never received the command")
	}
}

func TestSendFailsWhenControllerDown(t *testing.T) {
	// Grab a port and close it so nothing is listening there.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	target := listener.Addr().String()
	listener.Close()

	client := NewClient(target, 200*time.Millisecond, 100*time.Millisecond, nil)
	if err := client.Send(DirectionStop); err == nil {
		t.Fatal("expected send to a closed port to fail")
	}
}

func TestProbe(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	client := NewClient(listener.Addr().String(), time.Second, 500*time.Millisecond, nil)
	if !client.Probe() {
		t.Fatal("expected probe of live listener to succeed")
	}

	listener.Close()
	time.Sleep(10 * time.Millisecond)
	if client.Probe() {
		t.Fatal("expected probe of closed listener to fail")
	}
}
