package usecase

import (
	"context"
	"time"

	"PriceWatch/internal/domain/models"

	"github.com/stretchr/testify/mock"
)

type mockProvider struct{ mock.Mock }

func (m *mockProvider) LastPrice(ctx context.Context, symbol string) (models.Quote, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(models.Quote), args.Error(1)
}

func (m *mockProvider) Close() error { return nil }

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	return m.Called(ctx, alert).Error(0)
}

type mockRenderer struct{ mock.Mock }

func (m *mockRenderer) Render(ctx context.Context, symbol string, series []models.PriceRecord) (string, error) {
	args := m.Called(ctx, symbol, series)
	return args.String(0), args.Error(1)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) Append(ctx context.Context, rec models.PriceRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) MostRecentBefore(ctx context.Context, symbol string, before time.Time) (*models.PriceRecord, error) {
	args := m.Called(ctx, symbol, before)
	rec, _ := args.Get(0).(*models.PriceRecord)
	return rec, args.Error(1)
}

func (m *mockStore) Series(ctx context.Context, symbol string) ([]models.PriceRecord, error) {
	args := m.Called(ctx, symbol)
	recs, _ := args.Get(0).([]models.PriceRecord)
	return recs, args.Error(1)
}

func (m *mockStore) Close() error { return nil }
