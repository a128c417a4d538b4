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

// Package config produces the parameters of a sharing session and hands
// them to each role through one YAML file per role: sender.yaml,
// receiver.yaml and nodes.yaml. The MAC key is written only to the sender
// and receiver files.
package config

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/jeremyhahn/go-vss/pkg/codec"
	"github.com/jeremyhahn/go-vss/pkg/correlation"
	"github.com/jeremyhahn/go-vss/pkg/field"
	"github.com/jeremyhahn/go-vss/pkg/sharing"
	"github.com/jeremyhahn/go-vss/pkg/transport"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

const (
	// MinBasePort and MaxBasePort bound the randomly chosen first port of a
	// session.
	MinBasePort = 12345
	MaxBasePort = 23456

	DefaultHost = "127.0.0.1"
)

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NetworkConfig holds the transport settings shared by every role.
type NetworkConfig struct {
	Host         string        `yaml:"host"`
	BufferSize   int           `yaml:"buffer_size"`
	Separator    string        `yaml:"separator"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	DialRetries  uint64        `yaml:"dial_retries"`
	DialBackoff  time.Duration `yaml:"dial_backoff"`
	IOTimeout    time.Duration `yaml:"io_timeout"`
	ShareTimeout time.Duration `yaml:"share_timeout"`
}

// DefaultNetwork returns the network settings used by new sessions.
func DefaultNetwork() NetworkConfig {
	return NetworkConfig{
		Host:         DefaultHost,
		BufferSize:   transport.DefaultBufferSize,
		Separator:    string(transport.DefaultSeparator),
		DialTimeout:  transport.DefaultDialTimeout,
		DialRetries:  transport.DefaultDialRetries,
		DialBackoff:  transport.DefaultDialBackoff,
		IOTimeout:    30 * time.Second,
		ShareTimeout: 60 * time.Second,
	}
}

// Session is the complete parameter set of one sharing session.
type Session struct {
	ID      string
	Message []byte
	N       int
	K       int
	T       int
	Prime   *big.Int
	Mode    verification.Mode

	// Key is the base64 MAC key.
	Key string

	SenderPorts   []int
	ReceiverPorts []int
	NodePorts     []int

	Network NetworkConfig
	Logging LoggingConfig
}

// SessionOptions are the user inputs to NewSession.
type SessionOptions struct {
	Message string
	N       int
	K       int
	T       int
	Mode    verification.Mode

	// BasePort fixes the first port; zero picks one at random in
	// [MinBasePort, MaxBasePort].
	BasePort int

	// Network overrides DefaultNetwork when non-nil.
	Network *NetworkConfig
	Logging LoggingConfig
}

// ClampT bounds the fault-tolerance threshold to max(0, min(t, k-1, n-k-1)).
func ClampT(t, n, k int) int {
	return max(0, min(t, k-1, n-k-1))
}

// NewSession validates opts and derives the session parameters: the
// clamped t, the smallest table prime above both the secret and n, a fresh
// MAC key and contiguous port blocks for the sender, the receiver and the
// nodes, in that order.
func NewSession(opts *SessionOptions) (*Session, error) {
	if opts == nil {
		return nil, fmt.Errorf("%w: nil options", ErrInvalidSession)
	}
	if opts.K < 2 || opts.N < opts.K {
		return nil, fmt.Errorf("%w: need n >= k >= 2, got n=%d k=%d", ErrInvalidSession, opts.N, opts.K)
	}
	if err := opts.Mode.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	msg := []byte(opts.Message)
	if len(msg) == 0 || len(msg) > sharing.MaxMessageLength {
		return nil, fmt.Errorf("%w: length %d not in [1, %d]", ErrInvalidMessage, len(msg), sharing.MaxMessageLength)
	}

	secret, err := codec.StrToNum(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	bound := new(big.Int).Set(secret)
	if n := big.NewInt(int64(opts.N)); n.Cmp(bound) > 0 {
		bound = n
	}
	prime, err := field.PrimeAbove(bound)
	if err != nil {
		return nil, err
	}

	key, err := verification.GenerateKey(verification.MinKeyBits)
	if err != nil {
		return nil, err
	}

	network := DefaultNetwork()
	if opts.Network != nil {
		network = *opts.Network
	}
	base := opts.BasePort
	if base == 0 {
		base = MinBasePort + rand.IntN(MaxBasePort-MinBasePort+1)
	}
	if base < 1 || base+3*opts.N-1 > 65535 {
		return nil, fmt.Errorf("%w: base port %d cannot fit %d ports", ErrInvalidPorts, base, 3*opts.N)
	}

	s := &Session{
		ID:            correlation.NewID(),
		Message:       msg,
		N:             opts.N,
		K:             opts.K,
		T:             ClampT(opts.T, opts.N, opts.K),
		Prime:         prime,
		Mode:          opts.Mode,
		Key:           key,
		SenderPorts:   portRange(base, opts.N),
		ReceiverPorts: portRange(base+opts.N, opts.N),
		NodePorts:     portRange(base+2*opts.N, opts.N),
		Network:       network,
		Logging:       opts.Logging,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func portRange(first, n int) []int {
	ports := make([]int, n)
	for i := range ports {
		ports[i] = first + i
	}
	return ports
}

// Validate checks the session for internal consistency.
func (s *Session) Validate() error {
	if s.K < 2 || s.N < s.K {
		return fmt.Errorf("%w: need n >= k >= 2, got n=%d k=%d", ErrInvalidSession, s.N, s.K)
	}
	if s.T < 0 || s.T > ClampT(s.T, s.N, s.K) {
		return fmt.Errorf("%w: t=%d exceeds min(k-1, n-k-1)", ErrInvalidSession, s.T)
	}
	if err := s.Mode.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if len(s.Message) > sharing.MaxMessageLength {
		return fmt.Errorf("%w: length %d", ErrInvalidMessage, len(s.Message))
	}
	if err := validatePrime(s.Prime, s.N); err != nil {
		return err
	}
	if s.Mode == verification.ModeMAC {
		if _, err := verification.DecodeKey(s.Key); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSession, err)
		}
	}
	if err := validatePorts(s.N, s.SenderPorts, s.ReceiverPorts, s.NodePorts); err != nil {
		return err
	}
	return s.Network.Validate()
}

func validatePrime(p *big.Int, n int) error {
	if p == nil {
		return fmt.Errorf("%w: missing", ErrInvalidPrime)
	}
	if p.Cmp(big.NewInt(int64(n))) <= 0 {
		return fmt.Errorf("%w: %s is not above n=%d", ErrInvalidPrime, p, n)
	}
	if !p.ProbablyPrime(20) {
		return fmt.Errorf("%w: %s is not prime", ErrInvalidPrime, p)
	}
	return nil
}

// validatePorts checks that every set has n in-range ports and that no
// port is used twice across sets.
func validatePorts(n int, sets ...[]int) error {
	seen := make(map[int]bool)
	for _, set := range sets {
		if set == nil {
			continue
		}
		if len(set) != n {
			return fmt.Errorf("%w: expected %d ports, got %d", ErrInvalidPorts, n, len(set))
		}
		for _, p := range set {
			if p < 1 || p > 65535 {
				return fmt.Errorf("%w: %d out of range", ErrInvalidPorts, p)
			}
			if seen[p] {
				return fmt.Errorf("%w: %d used twice", ErrInvalidPorts, p)
			}
			seen[p] = true
		}
	}
	return nil
}

// Validate checks the network settings.
func (n *NetworkConfig) Validate() error {
	if n.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidSession)
	}
	if n.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size %d", ErrInvalidSession, n.BufferSize)
	}
	if len(n.Separator) != 1 || (n.Separator[0] >= '0' && n.Separator[0] <= '9') {
		return fmt.Errorf("%w: separator %q must be one non-digit byte", ErrInvalidSession, n.Separator)
	}
	if n.DialTimeout < 0 || n.DialBackoff < 0 || n.IOTimeout < 0 || n.ShareTimeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidSession)
	}
	return nil
}

func (n *NetworkConfig) separator() byte {
	if n.Separator == "" {
		return transport.DefaultSeparator
	}
	return n.Separator[0]
}

func (n *NetworkConfig) dialOptions() transport.DialOptions {
	return transport.DialOptions{
		Timeout: n.DialTimeout,
		Retries: n.DialRetries,
		Backoff: n.DialBackoff,
		Conn: transport.Options{
			Separator: n.separator(),
			Timeout:   n.IOTimeout,
		},
	}
}

// NodeIndex returns the position of port in the node port list.
func (s *Session) NodeIndex(port int) (int, error) {
	i := slices.Index(s.NodePorts, port)
	if i < 0 {
		return 0, fmt.Errorf("%w: port %d", ErrNodeIndex, port)
	}
	return i, nil
}
