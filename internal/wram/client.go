package wram

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config describes how to reach the emulator's memory server.
type Config struct {
	Host        string
	Port        int
	RequestByte byte
	Size        int
	DialTimeout time.Duration
	// ReadTimeout bounds one acquisition. Zero blocks until the snapshot arrives.
	ReadTimeout time.Duration
}

// Address returns host:port.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Client holds the long-lived connection used for every poll.
type Client struct {
	conn net.Conn
	cfg  Config
}

// Dial opens the connection. It is not retried.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Size <= 0 {
		cfg.Size = Size
	}
	if cfg.RequestByte == 0 {
		cfg.RequestByte = DefaultRequestByte
	}

	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Address())
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}
	return NewClient(conn, cfg), nil
}

// NewClient wraps an already connected stream.
func NewClient(conn net.Conn, cfg Config) *Client {
	if cfg.Size <= 0 {
		cfg.Size = Size
	}
	if cfg.RequestByte == 0 {
		cfg.RequestByte = DefaultRequestByte
	}
	return &Client{conn: conn, cfg: cfg}
}

// Snapshot performs one acquisition.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	deadline := time.Time{}
	if c.cfg.ReadTimeout > 0 {
		deadline = time.Now().Add(c.cfg.ReadTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, &TransportError{Op: "deadline", Err: err}
	}

	// cancellation unblocks a pending read
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	data, err := Acquire(c.conn, c.cfg.RequestByte, c.cfg.Size)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(data), nil
}

// RemoteAddr returns the emulator address for logging.
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// Close closes the connection.
func (c *Client) Close() error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("closing emulator connection: %w", err)
	}
	return nil
}
