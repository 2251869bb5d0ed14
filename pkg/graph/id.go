package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed identifier for graph nodes: the hex sha256
// of the node's construction path.
type NodeID string

// ZeroID is the empty node identifier.
const ZeroID = NodeID("")

// NewNodeID derives an identifier from a construction path such as
// "curve/rail" or "bevel/_anon_3".
func NewNodeID(path string) NodeID {
	sum := sha256.Sum256([]byte(path))
	return NodeID(hex.EncodeToString(sum[:]))
}

// Short returns an abbreviated form for logs and error messages.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// IsZero reports whether the identifier is unset.
func (id NodeID) IsZero() bool { return id == ZeroID }
