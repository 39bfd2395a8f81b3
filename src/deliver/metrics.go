package deliver

import "github.com/docker/go-metrics"

var (
	requestsServed metrics.LabeledCounter
	parseDuration  metrics.Timer
)

func init() {
	ns := metrics.NewNamespace("ustar", "deliver", nil)
	requestsServed = ns.NewLabeledCounter("requests", "The number of tar file requests by response status", "status")
	parseDuration = ns.NewTimer("parse", "The number of seconds it takes to read the entries of a tar file")
	metrics.Register(ns)
}
