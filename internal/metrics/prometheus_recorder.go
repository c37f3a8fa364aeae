package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	commands *prom.CounterVec
	relayed  *prom.CounterVec
	dropped  *prom.CounterVec
	storeErr *prom.CounterVec
	widgets  *prom.CounterVec
	elapsed  prom.Gauge
}

// NewPrometheusRecorder constructs and registers the timer metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meettimer",
			Name:      "commands_applied_total",
			Help:      "Commands applied to a timer copy, by context and action",
		}, []string{"context", "action"}),
		relayed: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meettimer",
			Name:      "messages_relayed_total",
			Help:      "Messages observed by the background relay",
		}, []string{"action"}),
		dropped: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meettimer",
			Name:      "messages_dropped_total",
			Help:      "Messages dropped because the recipient inbox was full",
		}, []string{"target"}),
		storeErr: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meettimer",
			Name:      "store_errors_total",
			Help:      "Store operations that degraded to defaults or were skipped",
		}, []string{"op"}),
		widgets: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "meettimer",
			Name:      "widget_transitions_total",
			Help:      "Overlay widget mounts and unmounts",
		}, []string{"transition"}),
		elapsed: prom.NewGauge(prom.GaugeOpts{
			Namespace: "meettimer",
			Name:      "elapsed_seconds",
			Help:      "Last rendered elapsed seconds",
		}),
	}
	reg.MustRegister(pr.commands, pr.relayed, pr.dropped, pr.storeErr, pr.widgets, pr.elapsed)
	return pr
}

func (pr *PrometheusRecorder) IncCommand(context, action string) {
	pr.commands.WithLabelValues(context, action).Inc()
}

func (pr *PrometheusRecorder) IncRelayed(action string) {
	pr.relayed.WithLabelValues(action).Inc()
}

func (pr *PrometheusRecorder) IncDropped(target string) {
	pr.dropped.WithLabelValues(target).Inc()
}

func (pr *PrometheusRecorder) IncStoreError(op string) {
	pr.storeErr.WithLabelValues(op).Inc()
}

func (pr *PrometheusRecorder) IncWidget(mounted bool) {
	transition := "unmount"
	if mounted {
		transition = "mount"
	}
	pr.widgets.WithLabelValues(transition).Inc()
}

func (pr *PrometheusRecorder) SetElapsedSeconds(seconds int) {
	pr.elapsed.Set(float64(seconds))
}
