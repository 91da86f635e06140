package chain

// ExecutionStatus is the execution state of a linked block.
type ExecutionStatus uint8

const (
	// ExecutionStatusNone marks a linked block that has not been executed yet.
	ExecutionStatusNone ExecutionStatus = iota
	// ExecutionStatusSuccess marks a block that was executed and validated.
	ExecutionStatusSuccess
	// ExecutionStatusFailed marks a block that failed validation or diverged
	// during execution. Failed is terminal.
	ExecutionStatusFailed
)

// String returns the string representation of an execution status.
func (s ExecutionStatus) String() string {
	switch s {
	case ExecutionStatusNone:
		return "none"
	case ExecutionStatusSuccess:
		return "success"
	case ExecutionStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CanTransitionTo returns whether the status may change to next. A status
// only leaves None, and only towards Success or Failed.
func (s ExecutionStatus) CanTransitionTo(next ExecutionStatus) bool {
	return s == ExecutionStatusNone && (next == ExecutionStatusSuccess || next == ExecutionStatusFailed)
}

// ChainBlockLink places a known block into the block graph. There is exactly one
// link per linked block id.
type ChainBlockLink struct {
	BlockID         Identifier
	ParentID        Identifier
	Height          uint64
	ExecutionStatus ExecutionStatus
}

// NewChainBlockLink creates a fresh, unexecuted link for the given block.
func NewChainBlockLink(block *Block) *ChainBlockLink {
	return &ChainBlockLink{
		BlockID:         block.ID(),
		ParentID:        block.Header.ParentID,
		Height:          block.Header.Height,
		ExecutionStatus: ExecutionStatusNone,
	}
}

// IsExecuted returns true once the block was executed successfully.
func (l *ChainBlockLink) IsExecuted() bool {
	return l.ExecutionStatus == ExecutionStatusSuccess
}

// IsFailed returns true if the block was rejected.
func (l *ChainBlockLink) IsFailed() bool {
	return l.ExecutionStatus == ExecutionStatusFailed
}
