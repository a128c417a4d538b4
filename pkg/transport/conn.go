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

// Package transport frames arbitrary-size payloads over a reliable byte
// stream.
//
// Every message is written as
//
//	<decimal-length><separator><payload>
//
// where payload is exactly length bytes. Receivers read in chunks of at most
// the configured buffer size until the declared length is satisfied, so a
// single message may span many reads.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"
)

const (
	// DefaultSeparator separates the length prefix from the payload.
	DefaultSeparator = ','

	// DefaultBufferSize is the read chunk size used when none is configured.
	DefaultBufferSize = 1024

	// DefaultMaxFrameSize bounds the declared payload length when none is
	// configured.
	DefaultMaxFrameSize = 4 << 20

	// maxLengthDigits bounds the length prefix; 19 digits covers any int64.
	maxLengthDigits = 19
)

// Conn is a framed connection. It is not safe for concurrent use by
// multiple goroutines.
type Conn struct {
	conn      net.Conn
	separator byte
	timeout   time.Duration
	maxFrame  int

	// pending holds bytes read past the end of the previous message.
	pending []byte
}

// Options configures a framed connection.
type Options struct {
	// Separator between the length prefix and the payload. Must not be a
	// decimal digit. Defaults to DefaultSeparator.
	Separator byte

	// Timeout bounds each Send and Recv call. Zero disables deadlines.
	Timeout time.Duration

	// MaxFrameSize is the largest payload Recv accepts. Defaults to
	// DefaultMaxFrameSize.
	MaxFrameSize int
}

// NewConn wraps an established stream connection.
func NewConn(conn net.Conn, opts *Options) (*Conn, error) {
	if opts == nil {
		opts = &Options{}
	}
	sep := opts.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}
	if sep >= '0' && sep <= '9' {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeparator, sep)
	}
	maxFrame := opts.MaxFrameSize
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &Conn{
		conn:      conn,
		separator: sep,
		timeout:   opts.Timeout,
		maxFrame:  maxFrame,
	}, nil
}

// LocalPort returns the local TCP port of the connection, or 0.
func (c *Conn) LocalPort() int {
	return portOf(c.conn.LocalAddr())
}

// RemotePort returns the peer TCP port of the connection, or 0.
func (c *Conn) RemotePort() int {
	return portOf(c.conn.RemoteAddr())
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Send writes one framed message, looping over partial writes until the
// whole frame is on the wire. A write that makes no progress is a hard
// failure.
func (c *Conn) Send(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	if c.timeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
			return err
		}
	}

	frame := make([]byte, 0, len(payload)+maxLengthDigits+1)
	frame = strconv.AppendInt(frame, int64(len(payload)), 10)
	frame = append(frame, c.separator)
	frame = append(frame, payload...)

	return writeFull(c.conn, frame)
}

// Recv reads one framed message using reads of at most bufferSize bytes.
func (c *Conn) Recv(bufferSize int) ([]byte, error) {
	if bufferSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBufferSize, bufferSize)
	}
	if c.timeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}
	}

	buf := make([]byte, bufferSize)

	// Accumulate until the separator shows up.
	head := c.pending
	c.pending = nil
	for bytes.IndexByte(head, c.separator) < 0 {
		if len(head) > maxLengthDigits {
			return nil, fmt.Errorf("%w: separator not found", ErrInvalidLength)
		}
		n, err := c.conn.Read(buf)
		if n > 0 {
			head = append(head, buf[:n]...)
			continue
		}
		if err == io.EOF || err == nil {
			return nil, fmt.Errorf("%w: before length prefix", ErrConnectionClosed)
		}
		return nil, err
	}

	idx := bytes.IndexByte(head, c.separator)
	length, err := parseLength(head[:idx])
	if err != nil {
		return nil, err
	}
	if length > c.maxFrame {
		return nil, fmt.Errorf("%w: %d exceeds maximum frame size %d", ErrInvalidLength, length, c.maxFrame)
	}

	body := head[idx+1:]
	if len(body) >= length {
		if len(body) > length {
			c.pending = append([]byte(nil), body[length:]...)
		}
		return append([]byte(nil), body[:length]...), nil
	}

	// Grow with the data actually read rather than the declared length.
	msg := append([]byte(nil), body...)
	for len(msg) < length {
		want := min(length-len(msg), bufferSize)
		n, err := c.conn.Read(buf[:want])
		if n > 0 {
			msg = append(msg, buf[:n]...)
			continue
		}
		if err == io.EOF || err == nil {
			return nil, fmt.Errorf("%w: received %d of %d bytes", ErrConnectionClosed, len(msg), length)
		}
		return nil, err
	}
	return msg, nil
}

func parseLength(field []byte) (int, error) {
	if len(field) == 0 || len(field) > maxLengthDigits {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, field)
	}
	for _, b := range field {
		if b < '0' || b > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidLength, field)
		}
	}
	length, err := strconv.Atoi(string(field))
	if err != nil || length == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, field)
	}
	return length, nil
}

func writeFull(w io.Writer, frame []byte) error {
	sent := 0
	for sent < len(frame) {
		n, err := w.Write(frame[sent:])
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrShortWrite
		}
		sent += n
	}
	return nil
}

func portOf(addr net.Addr) int {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}
