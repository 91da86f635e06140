package common

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// Chain is the printable form of a chain record, identifiers are hex encoded.
type Chain struct {
	ID                          string           `json:"id"`
	GenesisBlockID              string           `json:"genesis_block_id"`
	BestChainID                 string           `json:"best_chain_id"`
	BestChainHeight             uint64           `json:"best_chain_height"`
	LongestChainID              string           `json:"longest_chain_id"`
	LongestChainHeight          uint64           `json:"longest_chain_height"`
	LastIrreversibleBlockID     string           `json:"last_irreversible_block_id"`
	LastIrreversibleBlockHeight uint64           `json:"last_irreversible_block_height"`
	Branches                    []Branch         `json:"branches"`
	NotLinkedBlocks             []NotLinkedBlock `json:"not_linked_blocks"`
}

type Branch struct {
	TipID  string `json:"tip_id"`
	Height uint64 `json:"height"`
}

type NotLinkedBlock struct {
	BlockID  string `json:"block_id"`
	ParentID string `json:"parent_id"`
	Height   uint64 `json:"height"`
}

// Block is the printable form of a block with its link.
type Block struct {
	ID              string    `json:"id"`
	ParentID        string    `json:"parent_id"`
	Height          uint64    `json:"height"`
	Timestamp       time.Time `json:"timestamp"`
	TransactionRoot string    `json:"transaction_root"`
	StatusRoot      string    `json:"status_root"`
	StateRoot       string    `json:"state_root"`
	TransactionIDs  []string  `json:"transaction_ids"`
	ExecutionStatus string    `json:"execution_status,omitempty"`
	Results         []Result  `json:"results,omitempty"`
}

type Result struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	Logs          int    `json:"logs"`
}

func ToChain(c *chain.Chain) Chain {
	out := Chain{
		ID:                          string(c.ID),
		GenesisBlockID:              c.GenesisBlockID.String(),
		BestChainID:                 c.BestChainID.String(),
		BestChainHeight:             c.BestChainHeight,
		LongestChainID:              c.LongestChainID.String(),
		LongestChainHeight:          c.LongestChainHeight,
		LastIrreversibleBlockID:     c.LastIrreversibleBlockID.String(),
		LastIrreversibleBlockHeight: c.LastIrreversibleBlockHeight,
		Branches:                    make([]Branch, 0, len(c.Branches)),
		NotLinkedBlocks:             make([]NotLinkedBlock, 0, len(c.NotLinkedBlocks)),
	}
	for _, b := range c.Branches {
		out.Branches = append(out.Branches, Branch{TipID: b.TipID.String(), Height: b.Height})
	}
	for _, nl := range c.NotLinkedBlocks {
		out.NotLinkedBlocks = append(out.NotLinkedBlocks, NotLinkedBlock{
			BlockID:  nl.BlockID.String(),
			ParentID: nl.ParentID.String(),
			Height:   nl.Height,
		})
	}
	return out
}

// ToBlock converts a block. The link and results are optional.
func ToBlock(block *chain.Block, link *chain.ChainBlockLink, results []*chain.TransactionResult) Block {
	header := block.Header
	out := Block{
		ID:              block.ID().String(),
		ParentID:        header.ParentID.String(),
		Height:          header.Height,
		Timestamp:       header.Timestamp.UTC(),
		TransactionRoot: header.TransactionRoot.String(),
		StatusRoot:      header.StatusRoot.String(),
		StateRoot:       header.StateRoot.String(),
		TransactionIDs:  chain.IdentifierList(block.TransactionIDs).Strings(),
	}
	if link != nil {
		out.ExecutionStatus = link.ExecutionStatus.String()
	}
	for _, r := range results {
		out.Results = append(out.Results, Result{
			TransactionID: r.TransactionID.String(),
			Status:        r.Status.String(),
			Error:         r.Error,
			Logs:          len(r.Logs),
		})
	}
	return out
}

// PrettyPrint writes the value as indented JSON.
func PrettyPrint(w io.Writer, v interface{}) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal: %w", err)
	}
	_, err = fmt.Fprintln(w, string(bytes))
	return err
}
