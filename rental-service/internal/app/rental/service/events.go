package service

import (
	"context"
	"encoding/json"
	"time"

	"rentaldesk/pkg/logger"
	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/util"

	"github.com/google/uuid"
)

// productEventPayload - товар без изображений: data URI могут весить мегабайты
type productEventPayload struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Status    string  `json:"status"`
}

func newProductEventPayload(p *entity.Product) productEventPayload {
	return productEventPayload{
		ProductID: p.ProductID,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Quantity:  p.Quantity,
		Status:    p.Status,
	}
}

// publishEvent отправляет событие в Kafka. Ошибка только логируется:
// запись уже сохранена.
func publishEvent(ctx context.Context, publisher util.MessagePublisher, eventType, entityID string, payload interface{}) {
	if publisher == nil {
		return
	}

	event := entity.DomainEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		EntityID:  entityID,
		Actor:     ActorFrom(ctx),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("Failed to marshal domain event")
		return
	}

	if err := publisher.PublishMessage(ctx, entityID, data); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("entity_id", entityID).
			Msg("Failed to publish domain event")
	}
}
