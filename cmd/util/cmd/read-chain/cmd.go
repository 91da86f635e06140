package read_chain

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AElfProject/AElf-sub008/cmd/util/cmd/common"
	"github.com/AElfProject/AElf-sub008/model/chain"
)

// Cmd prints the persisted chain record: best, longest and last irreversible
// block, the branch tips and the blocks waiting for their parent.
var Cmd = &cobra.Command{
	Use:   "read-chain",
	Short: "print the chain record of --chain-id",
	Run:   run,
}

func run(*cobra.Command, []string) {
	err := ReadChain(os.Stdout, common.DataDir(), chain.ChainID(common.ChainID()))
	if err != nil {
		log.Fatal().Err(err).Msg("could not read chain")
	}
}

// ReadChain prints the chain record stored in the database at datadir.
func ReadChain(w io.Writer, datadir string, chainID chain.ChainID) error {
	db, all := common.InitStorages(datadir)
	defer db.Close()

	log.Info().Str("chain_id", string(chainID)).Msg("reading chain record")
	c, err := all.Chains.ByID(chainID)
	if err != nil {
		return fmt.Errorf("could not retrieve chain %s: %w", chainID, err)
	}
	return common.PrettyPrint(w, common.ToChain(c))
}
