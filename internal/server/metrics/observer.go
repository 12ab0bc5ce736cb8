// Package metrics records storage pipeline activity. The Prometheus
// implementation backs the /metrics endpoint; NopObserver is for tests and
// embedded use.
package metrics

import (
	"errors"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// Observer receives one call per finished storage operation.
type Observer interface {
	RecordUpload(duration time.Duration, category string, sizeBytes int64, err error)
	RecordDelete(duration time.Duration, err error)
	RecordList(duration time.Duration, err error)
}

type NopObserver struct{}

func (NopObserver) RecordUpload(time.Duration, string, int64, error) {}
func (NopObserver) RecordDelete(time.Duration, error)                {}
func (NopObserver) RecordList(time.Duration, error)                  {}

// PrometheusObserver exports storage metrics to Prometheus.
type PrometheusObserver struct {
	duration      *promclient.HistogramVec
	errors        *promclient.CounterVec
	uploadedBytes *promclient.CounterVec
	uploadedFiles *promclient.CounterVec
}

// NewPrometheusObserver registers the storage collectors on reg, reusing
// collectors that are already registered under the same names.
func NewPrometheusObserver(namespace string, reg promclient.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "archives"
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}

	o := &PrometheusObserver{
		duration: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of storage operations.",
			Buckets:   promclient.DefBuckets,
		}, []string{"operation"}),
		errors: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of failed storage operations.",
		}, []string{"operation"}),
		uploadedBytes: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes written to disk by successful uploads.",
		}, []string{"category"}),
		uploadedFiles: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_files_total",
			Help:      "Files stored by successful uploads.",
		}, []string{"category"}),
	}

	var err error
	if o.duration, err = register(reg, o.duration); err != nil {
		return nil, fmt.Errorf("register duration histogram: %w", err)
	}
	if o.errors, err = register(reg, o.errors); err != nil {
		return nil, fmt.Errorf("register error counter: %w", err)
	}
	if o.uploadedBytes, err = register(reg, o.uploadedBytes); err != nil {
		return nil, fmt.Errorf("register uploaded bytes counter: %w", err)
	}
	if o.uploadedFiles, err = register(reg, o.uploadedFiles); err != nil {
		return nil, fmt.Errorf("register uploaded files counter: %w", err)
	}
	return o, nil
}

func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are promclient.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

func (o *PrometheusObserver) RecordUpload(duration time.Duration, category string, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues("upload").Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues("upload").Inc()
		return
	}
	o.uploadedBytes.WithLabelValues(category).Add(float64(sizeBytes))
	o.uploadedFiles.WithLabelValues(category).Inc()
}

func (o *PrometheusObserver) RecordDelete(duration time.Duration, err error) {
	o.record("delete", duration, err)
}

func (o *PrometheusObserver) RecordList(duration time.Duration, err error) {
	o.record("list", duration, err)
}

func (o *PrometheusObserver) record(op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op).Inc()
	}
}

var (
	_ Observer = (*PrometheusObserver)(nil)
	_ Observer = NopObserver{}
)
