package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bayes"

// Prometheus holds the collectors of the cross validation runs.
type Prometheus struct {
	Experiments *prometheus.CounterVec
	Predictions *prometheus.CounterVec
	Accuracy    *prometheus.GaugeVec
	Duration    prometheus.Histogram
}

// NewPrometheusMetrics creates the collectors and registers them with the given registerer.
// A nil registerer leaves them unregistered.
func NewPrometheusMetrics(registerer prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		Experiments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "experiments_total",
				Help:      "Number of cross validation experiments by result.",
			}, []string{"result"}),
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Number of test records classified, by outcome.",
			}, []string{"correct"}),
		Accuracy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "accuracy",
				Help:      "Accuracy of the last experiment for each fold.",
			}, []string{"fold"}),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rotation_duration_seconds",
				Help:      "Time spent training and scoring a single fold rotation.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			}),
	}
	if registerer == nil {
		return p, nil
	}
	for _, c := range []prometheus.Collector{p.Experiments, p.Predictions, p.Accuracy, p.Duration} {
		if err := registerer.Register(c); err != nil {
			return nil, fmt.Errorf("could not register metrics: %w", err)
		}
	}
	return p, nil
}

// Experiment records the outcome of a single fold rotation.
func (p *Prometheus) Experiment(fold int, accuracy float64, hits, instances int, duration time.Duration) {
	if p == nil {
		return
	}
	p.Experiments.WithLabelValues("ok").Inc()
	p.Predictions.WithLabelValues("true").Add(float64(hits))
	p.Predictions.WithLabelValues("false").Add(float64(instances - hits))
	p.Accuracy.WithLabelValues(strconv.Itoa(fold)).Set(accuracy)
	p.Duration.Observe(duration.Seconds())
}

// Failure records a failed fold rotation.
func (p *Prometheus) Failure() {
	if p == nil {
		return
	}
	p.Experiments.WithLabelValues("error").Inc()
}
