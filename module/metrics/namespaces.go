package metrics

// Prometheus metric namespaces
const (
	namespaceChain     = "chain"
	namespaceExecution = "execution"
	namespaceStorage   = "storage"
)

// Storage subsystems
const (
	subsystemBadger = "badger"
	subsystemCache  = "cache"
)

// Execution subsystems
const (
	subsystemComputer  = "computer"
	subsystemPipeline  = "pipeline"
	subsystemIngestion = "ingestion"
)

// Chain subsystems
const (
	subsystemForkChoice = "fork_choice"
	subsystemPruning    = "pruning"
)
