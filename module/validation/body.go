package validation

import (
	"context"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// DefaultMaxTransactions is the default limit of transactions in one block.
const DefaultMaxTransactions = 512

// BodyValidator checks the transaction list of a block against its header.
type BodyValidator struct {
	maxTransactions int
}

var _ Provider = (*BodyValidator)(nil)

func NewBodyValidator(maxTransactions int) *BodyValidator {
	return &BodyValidator{maxTransactions: maxTransactions}
}

func (v *BodyValidator) ValidateBlockBeforeExecute(_ context.Context, block *chain.Block) (bool, error) {
	if len(block.TransactionIDs) > v.maxTransactions {
		return false, nil
	}
	seen := make(map[chain.Identifier]struct{}, len(block.TransactionIDs))
	for _, txID := range block.TransactionIDs {
		if _, duplicate := seen[txID]; duplicate {
			return false, nil
		}
		seen[txID] = struct{}{}
	}
	return block.Header.TransactionRoot == chain.TransactionRoot(block.TransactionIDs), nil
}

func (v *BodyValidator) ValidateBlockAfterExecute(context.Context, *chain.Block) (bool, error) {
	return true, nil
}
