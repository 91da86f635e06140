package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
)

var _ module.ExecutionMetrics = (*ExecutionCollector)(nil)

type ExecutionCollector struct {
	blockExecutionTime     prometheus.Histogram
	blockTransactionCount  prometheus.Histogram
	transactionsExecuted   *prometheus.CounterVec
	pipelineRunTime        *prometheus.HistogramVec
	pipelineBlocksExecuted *prometheus.CounterVec
	ingestionQueueSize     prometheus.Gauge
}

func NewExecutionCollector(registerer prometheus.Registerer) *ExecutionCollector {
	r := NewRegisterer(registerer)

	return &ExecutionCollector{
		blockExecutionTime: r.RegisterNewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceExecution,
			Subsystem: subsystemComputer,
			Name:      "block_execution_time_milliseconds",
			Help:      "the total time spent on block execution in milliseconds",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		blockTransactionCount: r.RegisterNewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceExecution,
			Subsystem: subsystemComputer,
			Name:      "block_transaction_count",
			Help:      "the number of transactions included in an executed block",
			Buckets:   []float64{1, 10, 50, 100, 250, 512},
		}),
		transactionsExecuted: r.RegisterNewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceExecution,
			Subsystem: subsystemComputer,
			Name:      "transactions_executed_total",
			Help:      "the number of executed transactions by status",
		}, []string{LabelStatus}),
		pipelineRunTime: r.RegisterNewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespaceExecution,
			Subsystem: subsystemPipeline,
			Name:      "run_time_milliseconds",
			Help:      "the time spent on one pipeline run in milliseconds",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{LabelOutcome}),
		pipelineBlocksExecuted: r.RegisterNewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceExecution,
			Subsystem: subsystemPipeline,
			Name:      "blocks_total",
			Help:      "the number of blocks handled by pipeline runs, by outcome",
		}, []string{LabelOutcome}),
		ingestionQueueSize: r.RegisterNewGauge(prometheus.GaugeOpts{
			Namespace: namespaceExecution,
			Subsystem: subsystemIngestion,
			Name:      "queue_size",
			Help:      "the number of blocks waiting to be attached",
		}),
	}
}

// ExecutionBlockExecuted reports execution meta data after executing a block
func (ec *ExecutionCollector) ExecutionBlockExecuted(dur time.Duration, txCount int) {
	ec.blockExecutionTime.Observe(float64(dur.Milliseconds()))
	ec.blockTransactionCount.Observe(float64(txCount))
}

func (ec *ExecutionCollector) ExecutionTransactionExecuted(status chain.TransactionStatus) {
	ec.transactionsExecuted.With(prometheus.Labels{LabelStatus: status.String()}).Inc()
}

func (ec *ExecutionCollector) ExecutionPipelineRun(dur time.Duration, outcome string, blocks int) {
	ec.pipelineRunTime.With(prometheus.Labels{LabelOutcome: outcome}).Observe(float64(dur.Milliseconds()))
	ec.pipelineBlocksExecuted.With(prometheus.Labels{LabelOutcome: outcome}).Add(float64(blocks))
}

func (ec *ExecutionCollector) ExecutionIngestionQueueSize(size uint) {
	ec.ingestionQueueSize.Set(float64(size))
}
