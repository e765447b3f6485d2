package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(buildInfo, dbPoolConns, dbPoolEmptyAcquires, jobCacheLookups)
}

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_studio_build_info",
			Help: "Always 1; labels carry the running build.",
		},
		[]string{"version", "commit", "go"},
	)

	// state: total | idle | in_use | max
	dbPoolConns = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_studio_db_pool_conns",
			Help: "Postgres pool connections by state.",
		},
		[]string{"state"},
	)

	// cumulative in pgxpool, so exported as a gauge
	dbPoolEmptyAcquires = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_studio_db_pool_empty_acquires",
			Help: "Acquires that had to wait for a connection since start.",
		},
	)

	jobCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_studio_cache_lookups_total",
			Help: "Redis cache lookups in front of the job store.",
		},
		[]string{"cache", "result"}, // result: hit | miss
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
}

// PoolStats is a snapshot of the Postgres connection pool.
type PoolStats struct {
	Total, Idle, InUse, Max int32
	EmptyAcquires           int64
}

func SetDBPool(s PoolStats) {
	dbPoolConns.WithLabelValues("total").Set(float64(s.Total))
	dbPoolConns.WithLabelValues("idle").Set(float64(s.Idle))
	dbPoolConns.WithLabelValues("in_use").Set(float64(s.InUse))
	dbPoolConns.WithLabelValues("max").Set(float64(s.Max))
	dbPoolEmptyAcquires.Set(float64(s.EmptyAcquires))
}

func IncCacheRequest(cacheName, result string) {
	jobCacheLookups.WithLabelValues(norm(cacheName), norm(result)).Inc()
}
