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

	"github.com/jeremyhahn/go-vss/internal/node"
	"github.com/jeremyhahn/go-vss/internal/receiver"
	"github.com/jeremyhahn/go-vss/internal/sender"
	"github.com/jeremyhahn/go-vss/pkg/adapters/logger"
	"github.com/jeremyhahn/go-vss/pkg/verification"
)

// rawKey decodes the MAC key when the mode needs one.
func rawKey(mode verification.Mode, key string) ([]byte, error) {
	if mode != verification.ModeMAC {
		return nil, nil
	}
	raw, err := verification.DecodeKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return raw, nil
}

// SenderConfig builds the sender's role configuration.
func (s *Session) SenderConfig(lg logger.Logger) (*sender.Config, error) {
	key, err := rawKey(s.Mode, s.Key)
	if err != nil {
		return nil, err
	}
	return &sender.Config{
		Message:     s.Message,
		N:           s.N,
		K:           s.K,
		T:           s.T,
		Prime:       s.Prime,
		Mode:        s.Mode,
		Key:         key,
		Host:        s.Network.Host,
		SenderPorts: s.SenderPorts,
		NodePorts:   s.NodePorts,
		Dial:        s.Network.dialOptions(),
		Logger:      lg,
	}, nil
}

// ReceiverConfig builds the receiver's role configuration.
func (s *Session) ReceiverConfig(lg logger.Logger) (*receiver.Config, error) {
	key, err := rawKey(s.Mode, s.Key)
	if err != nil {
		return nil, err
	}
	return &receiver.Config{
		K:             s.K,
		T:             s.T,
		Prime:         s.Prime,
		Mode:          s.Mode,
		Key:           key,
		Host:          s.Network.Host,
		ReceiverPorts: s.ReceiverPorts,
		NodePorts:     s.NodePorts,
		BufferSize:    s.Network.BufferSize,
		IOTimeout:     s.Network.IOTimeout,
		Dial:          s.Network.dialOptions(),
		Logger:        lg,
	}, nil
}

// NodeConfig builds the configuration of node i. The key is never part of
// it.
func (s *Session) NodeConfig(i int, dishonest bool, lg logger.Logger) (*node.Config, error) {
	if i < 0 || i >= len(s.NodePorts) {
		return nil, fmt.Errorf("%w: %d", ErrNodeIndex, i)
	}
	return &node.Config{
		Host:          s.Network.Host,
		Port:          s.NodePorts[i],
		Mode:          s.Mode,
		BufferSize:    s.Network.BufferSize,
		Separator:     s.Network.separator(),
		SenderPorts:   s.SenderPorts,
		ReceiverPorts: s.ReceiverPorts,
		Dishonest:     dishonest,
		ShareTimeout:  s.Network.ShareTimeout,
		IOTimeout:     s.Network.IOTimeout,
		Logger:        lg,
	}, nil
}
