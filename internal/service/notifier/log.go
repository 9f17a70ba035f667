package notifier

import (
	"context"

	"PriceWatch/internal/domain/models"
	drepo "PriceWatch/internal/domain/repository"
	applogger "PriceWatch/pkg/logger"
)

// LogNotifier writes alerts to the log. Used when no other channel is configured.
type LogNotifier struct {
	l *applogger.Logger
}

func NewLogNotifier(l *applogger.Logger) *LogNotifier {
	return &LogNotifier{l: l}
}

var _ drepo.Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Notify(_ context.Context, alert *models.Alert) error {
	n.l.Warn(alert.Subject(),
		applogger.String("symbol", alert.Symbol),
		applogger.Decimal("percent_change", alert.PercentChange.Round(2)),
		applogger.Decimal("price", alert.Price),
		applogger.Decimal("previous_price", alert.PreviousPrice),
		applogger.String("alert_id", alert.ID.String()),
	)
	return nil
}
