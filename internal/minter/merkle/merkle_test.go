package merkle

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"mintgate/pkg/domain"
)

func addresses(n int) []domain.Address {
	addrs := make([]domain.Address, 0, n)
	for i := 0; i < n; i++ {
		addrs = append(addrs, domain.Address(string(rune('a'+i%26))+"-collector"))
	}
	return addrs
}

func TestTreeProveAndVerify(t *testing.T) {
	for _, size := range []int{1, 2, 3, 5, 8, 13} {
		addrs := addresses(size)
		tree, err := NewTree(addrs)
		require.NoError(t, err)
		root := tree.Root()

		for _, addr := range addrs {
			proof, ok := tree.Prove(addr)
			require.True(t, ok, "missing proof for %s in tree of %d", addr, size)
			require.True(t, Verify(root, LeafFor(addr), proof),
				"proof for %s failed in tree of %d", addr, size)
		}
	}
}

func TestVerifyRejectsNonMembers(t *testing.T) {
	tree, err := NewTree(addresses(7))
	require.NoError(t, err)
	root := tree.Root()

	proof, ok := tree.Prove(domain.Address("a-collector"))
	require.True(t, ok)

	// Valid proof, wrong leaf.
	require.False(t, Verify(root, LeafFor(domain.Address("outsider")), proof))

	_, ok = tree.Prove(domain.Address("outsider"))
	require.False(t, ok)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	tree, err := NewTree(addresses(8))
	require.NoError(t, err)

	addr := domain.Address("c-collector")
	proof, ok := tree.Prove(addr)
	require.True(t, ok)
	require.NotEmpty(t, proof)

	proof[0][0] ^= 0xff
	require.False(t, Verify(tree.Root(), LeafFor(addr), proof))
}

func TestTreeDeterministicAcrossOrdering(t *testing.T) {
	forward := addresses(9)
	reversed := make([]domain.Address, len(forward))
	for i, addr := range forward {
		reversed[len(forward)-1-i] = addr
	}

	t1, err := NewTree(forward)
	require.NoError(t, err)
	t2, err := NewTree(reversed)
	require.NoError(t, err)
	require.Equal(t, t1.Root(), t2.Root())
}

func TestTreeCollapsesDuplicates(t *testing.T) {
	t1, err := NewTree([]domain.Address{"alice", "bob", "alice"})
	require.NoError(t, err)
	t2, err := NewTree([]domain.Address{"alice", "bob"})
	require.NoError(t, err)
	require.Equal(t, t1.Root(), t2.Root())
}

func TestTreeRejectsEmpty(t *testing.T) {
	_, err := NewTree(nil)
	require.Error(t, err)
}

func TestSingleLeafTree(t *testing.T) {
	tree, err := NewTree([]domain.Address{"alice"})
	require.NoError(t, err)

	proof, ok := tree.Prove(domain.Address("alice"))
	require.True(t, ok)
	require.Empty(t, proof)
	require.Equal(t, LeafFor(domain.Address("alice")), tree.Root())
	require.True(t, Verify(tree.Root(), LeafFor(domain.Address("alice")), nil))
}

func TestHashJSONRoundTrip(t *testing.T) {
	leaf := LeafFor(domain.Address("alice"))

	raw, err := json.Marshal(leaf)
	require.NoError(t, err)

	var decoded Hash
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, leaf, decoded)

	require.Error(t, decoded.UnmarshalText([]byte("not-hex")))
	require.Error(t, decoded.UnmarshalText([]byte("abcd")))
}
