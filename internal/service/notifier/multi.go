package notifier

import (
	"context"
	"errors"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
)

// Multi fans an alert out to every notifier. All are attempted; failures are joined.
type Multi []drepo.Notifier

var _ drepo.Notifier = Multi(nil)

func (m Multi) Notify(ctx context.Context, alert *models.Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
