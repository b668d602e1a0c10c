package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 核销与持久化的关键计数器，经 /metrics 暴露给 Prometheus

var (
	// RedemptionTotal 按终态统计扫码核销次数
	// outcome: redeemed_local | redeemed_foreign | invalid | not_found | quota_exceeded
	RedemptionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qr_event_scanner",
		Name:      "redemption_total",
		Help:      "扫码核销次数（按终态）",
	}, []string{"outcome"})

	// PersistenceWriteTotal 按落盘层统计写入结果
	// tier: primary | fallback | local_cache
	PersistenceWriteTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qr_event_scanner",
		Name:      "persistence_write_total",
		Help:      "持久化写入次数（按存储层与结果）",
	}, []string{"tier", "status"})

	// PersistenceLoadTotal 按命中层统计读取
	// tier: primary | fallback | local_cache | none
	PersistenceLoadTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "qr_event_scanner",
		Name:      "persistence_load_total",
		Help:      "持久化读取次数（按命中层）",
	}, []string{"tier"})
)
