// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-vss.
//
// go-vss is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-vss/internal/testutil"
)

// pipePair returns two framed ends of an in-memory stream.
func pipePair(t *testing.T, opts *Options) (*Conn, *Conn) {
	t.Helper()
	a, b := net.Pipe()
	ca, err := NewConn(a, opts)
	require.NoError(t, err)
	cb, err := NewConn(b, opts)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = ca.Close()
		_ = cb.Close()
	})
	return ca, cb
}

func TestSendRecv_RoundTrip(t *testing.T) {
	const bufferSize = 16

	tests := []struct {
		name string
		size int
	}{
		{"one byte", 1},
		{"exactly one buffer", bufferSize},
		{"several buffers", bufferSize*7 + 3},
		{"large bundle", 64 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, receiver := pipePair(t, nil)
			msg := bytes.Repeat([]byte{'z'}, tt.size)
			msg[0] = '7' // a digit in the payload must not confuse parsing

			errCh := make(chan error, 1)
			go func() { errCh <- sender.Send(msg) }()

			got, err := receiver.Recv(bufferSize)
			require.NoError(t, err)
			require.NoError(t, <-errCh)
			assert.Equal(t, msg, got)
		})
	}
}

func TestSendRecv_CustomSeparator(t *testing.T) {
	sender, receiver := pipePair(t, &Options{Separator: '|'})
	msg := []byte("a,b,c")

	go func() { _ = sender.Send(msg) }()

	got, err := receiver.Recv(2)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestRecv_BackToBackMessages(t *testing.T) {
	sender, receiver := pipePair(t, nil)

	go func() {
		// Both frames in one write so the first read over-reads.
		_, _ = sender.conn.Write([]byte("3,abc4,defg"))
	}()

	first, err := receiver.Recv(64)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), first)

	second, err := receiver.Recv(64)
	require.NoError(t, err)
	assert.Equal(t, []byte("defg"), second)
}

func TestRecv_Failures(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		opts    *Options
		wantErr error
	}{
		{"missing separator", "12345678901234567890123", nil, ErrInvalidLength},
		{"non-numeric length", "x1,abc", nil, ErrInvalidLength},
		{"empty length", ",abc", nil, ErrInvalidLength},
		{"zero length", "0,", nil, ErrInvalidLength},
		{"closed before prefix", "", nil, ErrConnectionClosed},
		{"closed mid-message", "10,abc", nil, ErrConnectionClosed},
		{"huge declared length", "999999999999999999,x", nil, ErrInvalidLength},
		{"above configured maximum", "17,abc", &Options{MaxFrameSize: 16}, ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := net.Pipe()
			receiver, err := NewConn(b, tt.opts)
			require.NoError(t, err)
			defer receiver.Close()

			go func() {
				if tt.raw != "" {
					_, _ = a.Write([]byte(tt.raw))
				}
				_ = a.Close()
			}()

			_, err = receiver.Recv(8)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRecv_InvalidBufferSize(t *testing.T) {
	_, receiver := pipePair(t, nil)
	_, err := receiver.Recv(0)
	assert.True(t, errors.Is(err, ErrInvalidBufferSize))
}

func TestRecv_Timeout(t *testing.T) {
	_, receiver := pipePair(t, &Options{Timeout: 20 * time.Millisecond})
	_, err := receiver.Recv(8)
	require.Error(t, err)

	var netErr net.Error
	require.True(t, errors.As(err, &netErr))
	assert.True(t, netErr.Timeout())
}

func TestSend_EmptyPayload(t *testing.T) {
	sender, _ := pipePair(t, nil)
	assert.True(t, errors.Is(sender.Send(nil), ErrEmptyPayload))
}

func TestNewConn_DigitSeparator(t *testing.T) {
	a, _ := net.Pipe()
	_, err := NewConn(a, &Options{Separator: '5'})
	assert.True(t, errors.Is(err, ErrInvalidSeparator))
}

// chunkWriter accepts at most limit bytes per call; a zero limit stalls.
type chunkWriter struct {
	limit int
	buf   bytes.Buffer
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	n := min(len(p), w.limit)
	w.buf.Write(p[:n])
	return n, nil
}

func TestWriteFull_PartialWrites(t *testing.T) {
	w := &chunkWriter{limit: 3}
	require.NoError(t, writeFull(w, []byte("5,hello")))
	assert.Equal(t, "5,hello", w.buf.String())
}

func TestWriteFull_ZeroWrite(t *testing.T) {
	w := &chunkWriter{limit: 0}
	assert.True(t, errors.Is(writeFull(w, []byte("1,x")), ErrShortWrite))
}

func TestDialer_SourcePortAndRetry(t *testing.T) {
	ports := testutil.ReservePorts(t, 2)
	localPort, serverPort := ports[0], ports[1]

	// Bind the server only after the dialer has started retrying.
	accepted := make(chan int, 1)
	go func() {
		time.Sleep(150 * time.Millisecond)
		ln, err := Listen(context.Background(), "127.0.0.1", serverPort)
		if err != nil {
			accepted <- -1
			return
		}
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			accepted <- -1
			return
		}
		c, _ := NewConn(conn, nil)
		accepted <- c.RemotePort()
		msg, err := c.Recv(4)
		if err == nil {
			_ = c.Send(msg)
		}
		_ = c.Close()
	}()

	dialer := NewDialer("127.0.0.1", &DialOptions{
		Timeout: time.Second,
		Retries: 20,
		Backoff: 10 * time.Millisecond,
	})
	conn, err := dialer.DialContext(context.Background(), localPort, JoinHostPort("127.0.0.1", serverPort))
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, localPort, <-accepted)
	assert.Equal(t, localPort, conn.LocalPort())

	require.NoError(t, conn.Send([]byte("ping pong")))
	echo, err := conn.Recv(4)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping pong"), echo)
}

func TestDialer_GivesUp(t *testing.T) {
	ports := testutil.ReservePorts(t, 2)

	dialer := NewDialer("127.0.0.1", &DialOptions{
		Timeout: 100 * time.Millisecond,
		Retries: 2,
		Backoff: 5 * time.Millisecond,
	})
	_, err := dialer.DialContext(context.Background(), ports[0], JoinHostPort("127.0.0.1", ports[1]))
	assert.Error(t, err)
}

// reservePorts finds n free loopback ports.
