// Package merkle implements the allowlist membership proofs: SHA-256 leaves,
// sorted-pair interior hashing, and a deterministic tree builder for
// generating roots and proofs.
//
// Verification is a pure function of (root, leaf, proof); it reads no state
// and performs no I/O.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"mintgate/pkg/domain"
)

// Hash is a 32-byte SHA-256 digest. Serializes as lowercase hex.
type Hash [sha256.Size]byte

// IsZero reports whether the hash is all zeroes.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(b []byte) error {
	decoded, err := hex.DecodeString(string(b))
	if err != nil {
		return fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(decoded) != sha256.Size {
		return fmt.Errorf("invalid hash length %d", len(decoded))
	}
	copy(h[:], decoded)
	return nil
}

// LeafFor derives the leaf hash for an address.
func LeafFor(addr domain.Address) Hash {
	return sha256.Sum256([]byte(addr))
}

// hashPair combines two nodes with the smaller one first, so proofs carry no
// left/right direction bits.
func hashPair(a, b Hash) Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	h := sha256.New()
	h.Write(a[:])
	h.Write(b[:])
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Verify recomputes the root from leaf and proof and compares it to root.
func Verify(root Hash, leaf Hash, proof []Hash) bool {
	computed := leaf
	for _, sibling := range proof {
		computed = hashPair(computed, sibling)
	}
	return computed == root
}

// Tree is a Merkle tree over a set of addresses, used to generate allowlist
// roots and per-address proofs. Duplicate addresses are collapsed.
type Tree struct {
	leaves []Hash
	levels [][]Hash
	index  map[Hash]int
}

// NewTree builds a tree over the given addresses. At least one address is
// required. Leaves are sorted so the same set always yields the same root.
func NewTree(addrs []domain.Address) (*Tree, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("allowlist must not be empty")
	}

	seen := make(map[Hash]struct{}, len(addrs))
	leaves := make([]Hash, 0, len(addrs))
	for _, addr := range addrs {
		leaf := LeafFor(addr)
		if _, dup := seen[leaf]; dup {
			continue
		}
		seen[leaf] = struct{}{}
		leaves = append(leaves, leaf)
	}
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i][:], leaves[j][:]) < 0
	})

	index := make(map[Hash]int, len(leaves))
	for i, leaf := range leaves {
		index[leaf] = i
	}

	levels := [][]Hash{leaves}
	for len(levels[len(levels)-1]) > 1 {
		prev := levels[len(levels)-1]
		next := make([]Hash, 0, (len(prev)+1)/2)
		for i := 0; i < len(prev); i += 2 {
			if i+1 == len(prev) {
				// Odd node promotes unchanged.
				next = append(next, prev[i])
				continue
			}
			next = append(next, hashPair(prev[i], prev[i+1]))
		}
		levels = append(levels, next)
	}

	return &Tree{leaves: leaves, levels: levels, index: index}, nil
}

// Root returns the tree root.
func (t *Tree) Root() Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Prove returns the membership proof for an address, or false if the address
// is not in the tree.
func (t *Tree) Prove(addr domain.Address) ([]Hash, bool) {
	pos, ok := t.index[LeafFor(addr)]
	if !ok {
		return nil, false
	}

	var proof []Hash
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := pos ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		pos /= 2
	}
	return proof, true
}
