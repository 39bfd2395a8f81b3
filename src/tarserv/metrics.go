package tarserv

import "github.com/docker/go-metrics"

var (
	requestsServed metrics.LabeledCounter
	buildDuration  metrics.Timer
	cacheHits      metrics.Counter
	cacheMisses    metrics.Counter
)

func init() {
	ns := metrics.NewNamespace("ustar", "tarserv", nil)
	requestsServed = ns.NewLabeledCounter("requests", "The number of directory requests by response status", "status")
	buildDuration = ns.NewTimer("build", "The number of seconds it takes to build the archive of a directory")
	cacheHits = ns.NewCounter("cache_hits", "The number of requests served from a cached archive")
	cacheMisses = ns.NewCounter("cache_misses", "The number of requests that built a new archive")
	metrics.Register(ns)
}
