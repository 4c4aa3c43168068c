package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alsaCards = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "alsa",
		Name:      "card_info",
		Help:      "Sound cards registered with the kernel, always 1",
	}, []string{"card", "id", "driver"})

	alsaSubstreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "alsa",
		Name:      "substreams",
		Help:      "PCM substreams by state",
	}, []string{"state"})
)

// SetALSACard marks a card as present.
func SetALSACard(card, id, driver string) {
	alsaCards.WithLabelValues(card, id, driver).Set(1)
}

// ResetALSACards removes all card series before a new scan.
func ResetALSACards() {
	alsaCards.Reset()
}

// SetALSASubstreams sets the number of substreams in each state.
func SetALSASubstreams(counts map[string]int) {
	alsaSubstreams.Reset()
	for state, n := range counts {
		alsaSubstreams.WithLabelValues(state).Set(float64(n))
	}
}
