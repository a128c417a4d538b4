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

package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-vss/pkg/verification"
)

const (
	SenderFileName   = "sender.yaml"
	ReceiverFileName = "receiver.yaml"
	NodesFileName    = "nodes.yaml"
)

// SenderFile is the on-disk form of the sender's parameters.
type SenderFile struct {
	SessionID   string        `yaml:"session_id"`
	Message     string        `yaml:"message"`
	N           int           `yaml:"n"`
	K           int           `yaml:"k"`
	T           int           `yaml:"t"`
	Prime       string        `yaml:"prime"`
	Mode        string        `yaml:"mode"`
	Key         string        `yaml:"key,omitempty"`
	SenderPorts []int         `yaml:"sender_ports"`
	NodePorts   []int         `yaml:"node_ports"`
	Network     NetworkConfig `yaml:"network"`
	Logging     LoggingConfig `yaml:"logging"`
}

// ReceiverFile is the on-disk form of the receiver's parameters.
type ReceiverFile struct {
	SessionID     string        `yaml:"session_id"`
	K             int           `yaml:"k"`
	T             int           `yaml:"t"`
	Prime         string        `yaml:"prime"`
	Mode          string        `yaml:"mode"`
	Key           string        `yaml:"key,omitempty"`
	ReceiverPorts []int         `yaml:"receiver_ports"`
	NodePorts     []int         `yaml:"node_ports"`
	Network       NetworkConfig `yaml:"network"`
	Logging       LoggingConfig `yaml:"logging"`
}

// NodesFile is the on-disk form shared by every node. It carries no key.
type NodesFile struct {
	SessionID     string        `yaml:"session_id"`
	Mode          string        `yaml:"mode"`
	SenderPorts   []int         `yaml:"sender_ports"`
	ReceiverPorts []int         `yaml:"receiver_ports"`
	NodePorts     []int         `yaml:"node_ports"`
	Network       NetworkConfig `yaml:"network"`
	Logging       LoggingConfig `yaml:"logging"`
}

// SenderFile returns the sender's view of the session.
func (s *Session) SenderFile() *SenderFile {
	return &SenderFile{
		SessionID:   s.ID,
		Message:     string(s.Message),
		N:           s.N,
		K:           s.K,
		T:           s.T,
		Prime:       s.Prime.String(),
		Mode:        s.Mode.String(),
		Key:         s.Key,
		SenderPorts: s.SenderPorts,
		NodePorts:   s.NodePorts,
		Network:     s.Network,
		Logging:     s.Logging,
	}
}

// ReceiverFile returns the receiver's view of the session.
func (s *Session) ReceiverFile() *ReceiverFile {
	return &ReceiverFile{
		SessionID:     s.ID,
		K:             s.K,
		T:             s.T,
		Prime:         s.Prime.String(),
		Mode:          s.Mode.String(),
		Key:           s.Key,
		ReceiverPorts: s.ReceiverPorts,
		NodePorts:     s.NodePorts,
		Network:       s.Network,
		Logging:       s.Logging,
	}
}

// NodesFile returns the nodes' view of the session.
func (s *Session) NodesFile() *NodesFile {
	return &NodesFile{
		SessionID:     s.ID,
		Mode:          s.Mode.String(),
		SenderPorts:   s.SenderPorts,
		ReceiverPorts: s.ReceiverPorts,
		NodePorts:     s.NodePorts,
		Network:       s.Network,
		Logging:       s.Logging,
	}
}

// WriteFiles writes the three role files into dir, creating it if needed.
// Files are readable by the owner only since two of them hold the key.
func (s *Session) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: create %s: %w", dir, err)
	}
	files := map[string]any{
		SenderFileName:   s.SenderFile(),
		ReceiverFileName: s.ReceiverFile(),
		NodesFileName:    s.NodesFile(),
	}
	for name, v := range files {
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("config: encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			return fmt.Errorf("config: write %s: %w", name, err)
		}
	}
	return nil
}

func readYAML(path string, v any) error {
	// #nosec G304 - path comes from the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func parsePrime(s string) (*big.Int, error) {
	p, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrime, s)
	}
	return p, nil
}

func parseMode(s string) (verification.Mode, error) {
	m, err := verification.ParseMode(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return m, nil
}

// LoadSenderFile reads sender.yaml, applies VSS_* overrides and rebuilds the
// session it describes.
func LoadSenderFile(path string) (*Session, error) {
	var f SenderFile
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}
	applyEnvOverrides(&f.Network, &f.Logging)

	prime, err := parsePrime(f.Prime)
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(f.Mode)
	if err != nil {
		return nil, err
	}
	if len(f.Message) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidMessage)
	}
	s := &Session{
		ID:          f.SessionID,
		Message:     []byte(f.Message),
		N:           f.N,
		K:           f.K,
		T:           f.T,
		Prime:       prime,
		Mode:        mode,
		Key:         f.Key,
		SenderPorts: f.SenderPorts,
		NodePorts:   f.NodePorts,
		Network:     f.Network,
		Logging:     f.Logging,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.Logging.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadReceiverFile reads receiver.yaml, applies VSS_* overrides and
// rebuilds the session it describes.
func LoadReceiverFile(path string) (*Session, error) {
	var f ReceiverFile
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}
	applyEnvOverrides(&f.Network, &f.Logging)

	prime, err := parsePrime(f.Prime)
	if err != nil {
		return nil, err
	}
	mode, err := parseMode(f.Mode)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:            f.SessionID,
		N:             len(f.NodePorts),
		K:             f.K,
		T:             f.T,
		Prime:         prime,
		Mode:          mode,
		Key:           f.Key,
		ReceiverPorts: f.ReceiverPorts,
		NodePorts:     f.NodePorts,
		Network:       f.Network,
		Logging:       f.Logging,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := s.Logging.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadNodesFile reads nodes.yaml and applies VSS_* overrides. The returned
// session has no prime, key or thresholds; only NodeConfig is meaningful.
func LoadNodesFile(path string) (*Session, error) {
	var f NodesFile
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}
	applyEnvOverrides(&f.Network, &f.Logging)

	mode, err := parseMode(f.Mode)
	if err != nil {
		return nil, err
	}
	n := len(f.NodePorts)
	if n == 0 {
		return nil, fmt.Errorf("%w: no node ports", ErrInvalidPorts)
	}
	if err := validatePorts(n, f.SenderPorts, f.ReceiverPorts, f.NodePorts); err != nil {
		return nil, err
	}
	if err := f.Network.Validate(); err != nil {
		return nil, err
	}
	if err := f.Logging.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		ID:            f.SessionID,
		N:             n,
		Mode:          mode,
		SenderPorts:   f.SenderPorts,
		ReceiverPorts: f.ReceiverPorts,
		NodePorts:     f.NodePorts,
		Network:       f.Network,
		Logging:       f.Logging,
	}, nil
}
