// Package ownership resolves the current owner of qualifying tokens for
// holder-gate policies. The gateway only consults it at purchase time; it
// never mutates ownership state.
package ownership

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"mintgate/pkg/domain"
)

// StaticResolver answers ownership queries from an in-memory snapshot keyed
// by contract address and token ID. Unknown tokens resolve to the zero
// address, which no purchaser matches. Deployments that need live chain
// state wire an indexer-backed implementation instead.
type StaticResolver struct {
	owners map[domain.Address]map[uint64]domain.Address
}

// NewStaticResolver builds a resolver over an owner map.
func NewStaticResolver(owners map[domain.Address]map[uint64]domain.Address) *StaticResolver {
	return &StaticResolver{owners: owners}
}

// LoadSnapshot reads a JSON snapshot of the form
// {"<contract>": {"<tokenID>": "<owner>"}}.
func LoadSnapshot(path string) (*StaticResolver, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ownership snapshot: %w", err)
	}
	var doc map[string]map[string]string
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse ownership snapshot: %w", err)
	}

	owners := make(map[domain.Address]map[uint64]domain.Address, len(doc))
	for contract, tokens := range doc {
		byToken := make(map[uint64]domain.Address, len(tokens))
		for key, owner := range tokens {
			id, err := strconv.ParseUint(key, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("ownership snapshot: token id %q under contract %s: %w", key, contract, err)
			}
			byToken[id] = domain.Address(owner)
		}
		owners[domain.Address(contract)] = byToken
	}
	return &StaticResolver{owners: owners}, nil
}

func (r *StaticResolver) OwnerOf(_ context.Context, contract domain.Address, tokenID uint64) (domain.Address, error) {
	return r.owners[contract][tokenID], nil
}
