package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AElfProject/AElf-sub008/model/chain"
	"github.com/AElfProject/AElf-sub008/module"
)

var _ module.ChainMetrics = (*ChainCollector)(nil)

type ChainCollector struct {
	attached           *prometheus.CounterVec
	bestHeight         prometheus.Gauge
	longestHeight      prometheus.Gauge
	irreversibleHeight prometheus.Gauge
	branches           prometheus.Gauge
	notLinked          prometheus.Gauge
	pruned             *prometheus.CounterVec
}

func NewChainCollector(registerer prometheus.Registerer) *ChainCollector {
	r := NewRegisterer(registerer)

	return &ChainCollector{
		attached: r.RegisterNewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceChain,
			Subsystem: subsystemForkChoice,
			Name:      "blocks_attached_total",
			Help:      "the number of attached blocks by resulting attach status",
		}, []string{LabelStatus}),
		bestHeight: r.RegisterNewGauge(prometheus.GaugeOpts{
			Namespace: namespaceChain,
			Subsystem: subsystemForkChoice,
			Name:      "best_chain_height",
			Help:      "the height of the deepest successfully executed block",
		}),
		longestHeight: r.RegisterNewGauge(prometheus.GaugeOpts{
			Namespace: namespaceChain,
			Subsystem: subsystemForkChoice,
			Name:      "longest_chain_height",
			Help:      "the height of the deepest linked block",
		}),
		irreversibleHeight: r.RegisterNewGauge(prometheus.GaugeOpts{
			Namespace: namespaceChain,
			Subsystem: subsystemForkChoice,
			Name:      "last_irreversible_block_height",
			Help:      "the height of the last irreversible block",
		}),
		branches: r.RegisterNewGauge(prometheus.GaugeOpts{
			Namespace: namespaceChain,
			Subsystem: subsystemForkChoice,
			Name:      "branches",
			Help:      "the number of live branch tips",
		}),
		notLinked: r.RegisterNewGauge(prometheus.GaugeOpts{
			Namespace: namespaceChain,
			Subsystem: subsystemForkChoice,
			Name:      "not_linked_blocks",
			Help:      "the number of blocks waiting for their parent",
		}),
		pruned: r.RegisterNewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceChain,
			Subsystem: subsystemPruning,
			Name:      "blocks_pruned_total",
			Help:      "the number of blocks removed from storage",
		}, []string{LabelReason}),
	}
}

func (cc *ChainCollector) BlockAttached(status chain.AttachStatus) {
	cc.attached.With(prometheus.Labels{LabelStatus: status.String()}).Inc()
}

func (cc *ChainCollector) ChainHeights(best uint64, longest uint64, lib uint64) {
	cc.bestHeight.Set(float64(best))
	cc.longestHeight.Set(float64(longest))
	cc.irreversibleHeight.Set(float64(lib))
}

func (cc *ChainCollector) Branches(branches int, notLinked int) {
	cc.branches.Set(float64(branches))
	cc.notLinked.Set(float64(notLinked))
}

func (cc *ChainCollector) BlocksPruned(reason string, count int) {
	cc.pruned.With(prometheus.Labels{LabelReason: reason}).Add(float64(count))
}
