package wram

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmulator serves one request on the far end of a pipe: it reads the request
// byte, writes payload in chunks of the given size, then optionally closes.
func fakeEmulator(t *testing.T, conn net.Conn, payload []byte, chunk int, closeAfter bool) <-chan byte {
	t.Helper()
	got := make(chan byte, 1)
	go func() {
		req := make([]byte, 1)
		if _, err := io.ReadFull(conn, req); err != nil {
			close(got)
			return
		}
		got <- req[0]
		for start := 0; start < len(payload); start += chunk {
			end := min(start+chunk, len(payload))
			if _, err := conn.Write(payload[start:end]); err != nil {
				return
			}
		}
		if closeAfter {
			_ = conn.Close()
		}
	}()
	return got
}

func patterned(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

func TestAcquire_FullSnapshot(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := patterned(Size)
	req := fakeEmulator(t, server, payload, 1000, false)

	data, err := Acquire(client, DefaultRequestByte, Size)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), <-req)
	assert.Len(t, data, Size)
	assert.True(t, bytes.Equal(payload, data), "snapshot bytes differ from payload")
}

func TestAcquire_ClosedMidRead(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	fakeEmulator(t, server, patterned(100), 100, true)

	data, err := Acquire(client, DefaultRequestByte, Size)
	require.Error(t, err)
	assert.Nil(t, data, "no truncated buffer may be returned")
	assert.True(t, errors.Is(err, ErrTransportClosed))

	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "read", terr.Op)
	assert.Equal(t, 100, terr.Received)
	assert.Equal(t, Size, terr.Expected)
}

func TestAcquire_RequestWriteFails(t *testing.T) {
	client, server := net.Pipe()
	server.Close()
	client.Close()

	_, err := Acquire(client, DefaultRequestByte, Size)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "request", terr.Op)
}

func TestAcquire_InvalidSize(t *testing.T) {
	_, err := Acquire(&bytes.Buffer{}, DefaultRequestByte, 0)
	assert.Error(t, err)
}

func TestClient_Snapshot(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	payload := patterned(64)
	req := fakeEmulator(t, server, payload, 16, false)

	c := NewClient(client, Config{Size: 64, RequestByte: 0x02, ReadTimeout: 2 * time.Second})
	defer c.Close()

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), <-req)
	assert.Equal(t, 64, snap.Len())
	assert.Equal(t, payload, snap.Bytes())
	assert.NotZero(t, snap.ID)
	assert.False(t, snap.CapturedAt.IsZero())
}

func TestDial_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	_, err = Dial(context.Background(), Config{Host: "127.0.0.1", Port: addr.Port, DialTimeout: time.Second})
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "dial", terr.Op)
}

func TestConfig_Address(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8888", Config{Host: "127.0.0.1", Port: 8888}.Address())
}

func TestClient_SnapshotCancelled(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	// The emulator reads the request and never answers.
	go func() {
		req := make([]byte, 1)
		_, _ = io.ReadFull(server, req)
	}()

	c := NewClient(client, Config{})
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := c.Snapshot(ctx)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, "read", terr.Op)
	assert.Error(t, ctx.Err())
}
