package chain

import (
	"time"
)

// GenesisTime defines the timestamp of the genesis block.
var GenesisTime = time.Date(2018, time.December, 19, 22, 32, 30, 42, time.UTC)

// DefaultTransactionLimit is the maximum number of transactions a block may
// contain.
const DefaultTransactionLimit = 512
