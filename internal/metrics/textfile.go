package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every metric this process exports.
const namespace = "vecrud"

// WriteTextfile dumps every registered metric to path in the Prometheus text
// format, for node_exporter's textfile collector. The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
