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

package node

// State is the lifecycle position of a node.
type State int32

const (
	// StateIdle is the state after construction.
	StateIdle State = iota

	// StateAwaitingPeers means the node is accepting connections and holds
	// no share yet.
	StateAwaitingPeers

	// StateShareHeld means the share was received and, for a dishonest
	// node, already altered.
	StateShareHeld

	// StateForwarding means the share is being written to the receiver.
	StateForwarding

	// StateDone means the share was forwarded and the node has stopped.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPeers:
		return "awaiting_peers"
	case StateShareHeld:
		return "share_held"
	case StateForwarding:
		return "forwarding"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}
