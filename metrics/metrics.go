package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studlyf_messages_created_total",
			Help: "Messages stored, by content type",
		},
		[]string{"type"}, // text, image, file
	)

	MessagesMarkedRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "studlyf_messages_marked_read_total",
			Help: "Messages flipped to read",
		},
	)

	RealtimeFrames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studlyf_realtime_frames_total",
			Help: "Realtime frames by outcome",
		},
		[]string{"outcome"}, // delivered, dropped, bridged, bridge_dropped
	)

	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "studlyf_realtime_connections",
			Help: "Open realtime connections on this instance",
		},
	)

	RecordsReaped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studlyf_records_reaped_total",
			Help: "Expired records removed by the retention job",
		},
		[]string{"kind"}, // message, connection_request
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studlyf_events_published_total",
			Help: "Domain events handed to the broker",
		},
		[]string{"type", "outcome"},
	)
)

// Handler exposes the default registry for scraping.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
