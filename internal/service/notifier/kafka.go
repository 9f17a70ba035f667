package notifier

import (
	"context"
	"fmt"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
)

// Publisher writes a keyed message. *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// KafkaNotifier publishes alerts as JSON events keyed by symbol.
type KafkaNotifier struct {
	pub Publisher
}

func NewKafkaNotifier(pub Publisher) *KafkaNotifier {
	return &KafkaNotifier{pub: pub}
}

var _ drepo.Notifier = (*KafkaNotifier)(nil)

func (n *KafkaNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	if err := n.pub.Publish(ctx, alert.Symbol, alert); err != nil {
		return fmt.Errorf("%w: kafka: %v", models.ErrNotify, err)
	}
	return nil
}
