package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AElfProject/AElf-sub008/cmd/util/cmd/common"
	read_block "github.com/AElfProject/AElf-sub008/cmd/util/cmd/read-block"
	read_chain "github.com/AElfProject/AElf-sub008/cmd/util/cmd/read-chain"
)

var (
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "util",
	Short: "Utility functions for a node database",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setLogLevel()
	},
}

var RootCmd = rootCmd

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVarP(&flagLogLevel, "loglevel", "l", "info", "level for logging (panic, fatal, error, warn, info, debug)")
	common.InitDataDirFlag(rootCmd)
	common.InitChainIDFlag(rootCmd)

	addCommands()

	cobra.OnInitialize(initConfig)
}

func addCommands() {
	rootCmd.AddCommand(read_chain.Cmd)
	rootCmd.AddCommand(read_block.Cmd)
}

// initConfig lets every flag be set through an AELF_ prefixed environment
// variable, e.g. AELF_DATADIR.
func initConfig() {
	viper.SetEnvPrefix("aelf")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setLogLevel() {
	switch flagLogLevel {
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
