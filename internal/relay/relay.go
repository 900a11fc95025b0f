package relay

import (
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strings"
	"time"

	"rovercam/internal/logging"
)

// Direction is a movement request from the control panel.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionStop  Direction = "stop"
)

// commands maps each direction onto the single-byte command the motor
// controller expects.
var commands = map[Direction]byte{
	DirectionUp:    'F',
	DirectionDown:  'B',
	DirectionLeft:  'L',
	DirectionRight: 'R',
	DirectionStop:  'S',
}

// ParseDirection validates a direction string from the API.
func ParseDirection(value string) (Direction, error) {
	direction := Direction(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := commands[direction]; !ok {
		return "", fmt.Errorf("unknown direction %q (valid: %s)", value, strings.Join(DirectionNames(), ", "))
	}
	return direction, nil
}

// DirectionNames returns the valid direction strings in stable order.
func DirectionNames() []string {
	names := make([]string, 0, len(commands))
	for direction := range commands {
		names = append(names, string(direction))
	}
	sort.Strings(names)
	return names
}

// Command returns the wire byte for a direction.
func (d Direction) Command() (byte, error) {
	command, ok := commands[d]
	if !ok {
		return 0, fmt.Errorf("unknown direction %q", string(d))
	}
	return command, nil
}

// Client sends commands to one controller endpoint. Connections are
// opened per send: the controller treats each connection as one
// command, and a persistent socket would wedge every later command if
// the controller restarts.
type Client struct {
	target       string
	sendTimeout  time.Duration
	probeTimeout time.Duration
	logger       *slog.Logger
}

// NewClient builds a client for target (host:port).
func NewClient(target string, sendTimeout, probeTimeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		target:       target,
		sendTimeout:  sendTimeout,
		probeTimeout: probeTimeout,
		logger:       logging.NewComponentLogger(logger, "relay"),
	}
}

// Target returns the controller endpoint.
func (c *Client) Target() string {
	return c.target
}

// Send transmits the command byte for direction. The timeout covers
// both dial and write so a dead controller fails fast.
func (c *Client) Send(direction Direction) error {
	command, err := direction.Command()
	if err != nil {
		return err
	}
	conn, err := net.DialTimeout("tcp", c.target, c.sendTimeout)
	if err != nil {
		return fmt.Errorf("connect to motor controller %s: %w", c.target, err)
	}
	defer conn.Close()
	if err := conn.SetWriteDeadline(time.Now().Add(c.sendTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := conn.Write([]byte{command}); err != nil {
		return fmt.Errorf("send command to motor controller %s: %w", c.target, err)
	}
	c.logger.Debug("command relayed",
		logging.String(logging.FieldDirection, string(direction)),
		logging.String("command", string(command)))
	return nil
}

// Probe reports whether the controller currently accepts connections.
// Used for status output only; a failed probe does not block sends.
func (c *Client) Probe() bool {
	conn, err := net.DialTimeout("tcp", c.target, c.probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
