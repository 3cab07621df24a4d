package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends every registered metric to a Prometheus Pushgateway. A one-shot
// export never lives long enough to be scraped, so metrics are pushed once at
// exit under the given job and run grouping.
func Push(ctx context.Context, gatewayURL, job, runID string) error {
	if gatewayURL == "" {
		return nil
	}
	pusher := push.New(gatewayURL, job).
		Gatherer(prometheus.DefaultGatherer).
		Grouping("run_id", runID)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
