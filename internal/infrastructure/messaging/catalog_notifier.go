package messaging

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	domainBook "bookstore-api/internal/domain/book"
	"bookstore-api/internal/logger"
	"bookstore-api/pkg/mqtt"
)

type CatalogEvent struct {
	Event  string    `json:"event"`
	BookID string    `json:"bookId"`
	Name   string    `json:"name"`
	At     time.Time `json:"at"`
}

// CatalogNotifier publishes book changes to an MQTT topic. Delivery is best
// effort: failures are logged and never reach the caller.
type CatalogNotifier struct {
	publisher mqtt.Publisher
	topic     string
	qos       byte
	now       func() time.Time
}

func NewCatalogNotifier(publisher mqtt.Publisher, topic string, qos byte) *CatalogNotifier {
	return &CatalogNotifier{
		publisher: publisher,
		topic:     topic,
		qos:       qos,
		now:       time.Now,
	}
}

func (n *CatalogNotifier) BookChanged(ctx context.Context, event string, b *domainBook.Book) {
	payload, err := json.Marshal(CatalogEvent{
		Event:  event,
		BookID: b.HexID(),
		Name:   b.Name,
		At:     n.now().UTC(),
	})
	if err != nil {
		logger.FromContext(ctx).Error("Failed to encode catalog event", zap.String("event", event), zap.Error(err))
		return
	}

	if err := n.publisher.Publish(n.topic, n.qos, false, payload); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish catalog event",
			zap.String("event", "catalog_publish_failed"),
			zap.String("catalog_event", event),
			zap.String("topic", n.topic),
			zap.Error(err),
		)
		return
	}

	logger.FromContext(ctx).Debug("Catalog event published",
		zap.String("event", "catalog_published"),
		zap.String("catalog_event", event),
		zap.String("book_id", b.HexID()),
	)
}

// NopNotifier is used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) BookChanged(context.Context, string, *domainBook.Book) {}
