package read_block

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AElfProject/AElf-sub008/cmd/util/cmd/common"
	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/storage"
)

var (
	flagBlockID string
	flagHeight  uint64
	flagResults bool
)

var Cmd = &cobra.Command{
	Use:   "read-block",
	Short: "print a block by --block-id, or all linked blocks at --height",
	Run:   run,
}

func init() {
	Cmd.Flags().StringVar(&flagBlockID, "block-id", "", "the id of the block")
	Cmd.Flags().Uint64Var(&flagHeight, "height", 0, "the height of the blocks")
	Cmd.Flags().BoolVar(&flagResults, "results", false, "include the transaction results")
}

func run(cmd *cobra.Command, _ []string) {
	db, all := common.InitStorages(common.DataDir())
	defer db.Close()

	var ids []chain.Identifier
	switch {
	case flagBlockID != "":
		blockID, err := chain.HexStringToIdentifier(flagBlockID)
		if err != nil {
			log.Fatal().Err(err).Msg("malformed block ID")
		}
		ids = append(ids, blockID)
	case cmd.Flags().Changed("height"):
		var err error
		ids, err = all.Links.AtHeight(flagHeight)
		if err != nil {
			log.Fatal().Err(err).Uint64("height", flagHeight).Msg("could not get blocks at height")
		}
	default:
		log.Fatal().Msg("missing flags: --block-id or --height")
	}

	for _, blockID := range ids {
		err := ReadBlock(os.Stdout, all, blockID, flagResults)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read block")
		}
	}
}

// ReadBlock prints the block with its execution status. Tombstoned or
// not-linked blocks are printed without the missing parts.
func ReadBlock(w io.Writer, all *storage.All, blockID chain.Identifier, withResults bool) error {
	link, err := all.Links.ByBlockID(blockID)
	if errors.Is(err, storage.ErrNotFound) {
		link = nil
	} else if err != nil {
		return fmt.Errorf("could not get link of %v: %w", blockID, err)
	}

	block, err := all.Blocks.ByID(blockID)
	if errors.Is(err, storage.ErrNotFound) && link != nil {
		log.Warn().Str("block_id", blockID.String()).Msg("block body was removed, printing link only")
		block = &chain.Block{Header: &chain.Header{ParentID: link.ParentID, Height: link.Height}}
	} else if err != nil {
		return fmt.Errorf("could not get block %v: %w", blockID, err)
	}

	var results []*chain.TransactionResult
	if withResults {
		results, err = all.TransactionResults.ByBlockID(blockID)
		if err != nil {
			return fmt.Errorf("could not get results of %v: %w", blockID, err)
		}
	}

	printable := common.ToBlock(block, link, results)
	printable.ID = blockID.String()
	return common.PrettyPrint(w, printable)
}
