package common

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DataDirFlag = "datadir"
	ChainIDFlag = "chain-id"
)

// InitDataDirFlag registers the persistent --datadir flag. The value is read
// through viper with DataDir, so the environment may provide it.
func InitDataDirFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(DataDirFlag, "d", "/var/aelf/data/chain", "directory of the badger database")
	bindFlag(cmd.PersistentFlags(), DataDirFlag)
}

// InitChainIDFlag registers the persistent --chain-id flag.
func InitChainIDFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(ChainIDFlag, "AELF", "id of the chain to inspect")
	bindFlag(cmd.PersistentFlags(), ChainIDFlag)
}

func bindFlag(flags *pflag.FlagSet, name string) {
	_ = viper.BindPFlag(name, flags.Lookup(name))
}

func DataDir() string {
	return viper.GetString(DataDirFlag)
}

func ChainID() string {
	return viper.GetString(ChainIDFlag)
}
