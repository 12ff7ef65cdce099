package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation kinds and outcomes used as GenerationOutcomes labels.
const (
	KindProduct        = "product"
	KindPromptProduct  = "prompt_product"
	KindRecommendation = "recommendation"

	OutcomeGenerated = "generated"
	OutcomeFallback  = "fallback"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// ProductsDeleted is a Prometheus counter for tracking the total number of products deleted.
	ProductsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_deleted_total",
		Help: "The total number of products deleted",
	})

	// ImagesUploaded counts stored product images.
	ImagesUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "product_images_uploaded_total",
		Help: "The total number of product images uploaded",
	})

	// GenerationOutcomes counts generated drafts by kind and whether the fallback was used.
	GenerationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_outcomes_total",
		Help: "Generated drafts by kind and outcome",
	}, []string{"kind", "outcome"})

	// RecommendationsSaved counts persisted recommendation pairings.
	RecommendationsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommendations_saved_total",
		Help: "The total number of recommendation pairings saved",
	})

	// PublishFailures counts lifecycle events that could not be published and went to the outbox.
	PublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_publish_failures_total",
		Help: "The total number of lifecycle events that failed to publish",
	})

	// OutboxRepublished counts outbox events delivered by the retry worker.
	OutboxRepublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outbox_events_republished_total",
		Help: "The total number of outbox events republished",
	})
)
