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
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	// DefaultDialTimeout bounds a single connection attempt.
	DefaultDialTimeout = 5 * time.Second

	// DefaultDialRetries is the number of retries after the first attempt.
	DefaultDialRetries = 8

	// DefaultDialBackoff is the base of the exponential retry backoff.
	DefaultDialBackoff = 50 * time.Millisecond
)

// DialOptions configures outbound connections.
type DialOptions struct {
	// Timeout bounds each connection attempt.
	Timeout time.Duration

	// Retries is the number of additional attempts made when the peer is
	// not reachable yet, e.g. because it has not finished binding.
	Retries uint64

	// Backoff is the base delay of the exponential backoff between attempts.
	Backoff time.Duration

	// Conn configures the framed connection returned on success.
	Conn Options
}

// Dialer opens framed connections from a fixed local port. Peers identify
// the dialing role by that source port, so the port is part of the
// protocol rather than an implementation detail.
type Dialer struct {
	host string
	opts DialOptions
}

// NewDialer creates a dialer that binds outbound connections to host.
func NewDialer(host string, opts *DialOptions) *Dialer {
	o := DialOptions{}
	if opts != nil {
		o = *opts
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultDialTimeout
	}
	if o.Backoff == 0 {
		o.Backoff = DefaultDialBackoff
	}
	return &Dialer{host: host, opts: o}
}

// DialContext connects from localPort to addr, retrying refused or timed out
// attempts with exponential backoff until the retry budget is spent or ctx
// is done.
func (d *Dialer) DialContext(ctx context.Context, localPort int, addr string) (*Conn, error) {
	local := &net.TCPAddr{IP: net.ParseIP(d.host), Port: localPort}
	if local.IP == nil {
		ips, err := net.DefaultResolver.LookupIP(ctx, "ip", d.host)
		if err != nil || len(ips) == 0 {
			return nil, fmt.Errorf("transport: resolve %s: %w", d.host, err)
		}
		local.IP = ips[0]
	}

	backoff := retry.WithMaxRetries(d.opts.Retries, retry.NewExponential(d.opts.Backoff))

	dialer := &net.Dialer{
		LocalAddr: local,
		Timeout:   d.opts.Timeout,
		Control:   reuseAddrControl,
	}

	var conn net.Conn
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s from port %d: %w", addr, localPort, err)
	}

	return NewConn(conn, &d.opts.Conn)
}

// Listen binds a TCP listener on host:port with address reuse enabled.
func Listen(ctx context.Context, host string, port int) (net.Listener, error) {
	lc := net.ListenConfig{Control: reuseAddrControl}
	return lc.Listen(ctx, "tcp", JoinHostPort(host, port))
}

// JoinHostPort formats host and an integer port as a dial address.
func JoinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// isTransient reports whether a dial error is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EADDRINUSE) ||
		errors.Is(err, syscall.EADDRNOTAVAIL) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
