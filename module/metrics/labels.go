package metrics

const (
	LabelResource = "resource"
	LabelStatus   = "status"
	LabelOutcome  = "outcome"
	LabelReason   = "reason"
)

const (
	ResourceUndefined         = "undefined"
	ResourceBlock             = "block"
	ResourceTransaction       = "transaction"
	ResourceChainBlockLink    = "chain_block_link"
	ResourceBlockStateSet     = "block_state_set"
	ResourceTransactionResult = "transaction_result"
)

const (
	PruneReasonDiscarded    = "discarded"
	PruneReasonIrreversible = "irreversible"
	PruneReasonNotLinked    = "not_linked"
)
