package rest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/notifid/logextractor/internal/domain/extraction"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) PersonActivityLogs(ctx context.Context, req extraction.PersonLogsRequest) (*extraction.Outcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.Outcome), args.Error(1)
}

func (m *mockService) NotificationBundle(ctx context.Context, req extraction.NotificationBundleRequest) (*extraction.Outcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.Outcome), args.Error(1)
}

func (m *mockService) MonthlyExport(ctx context.Context, req extraction.MonthlyExportRequest) (*extraction.Outcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.Outcome), args.Error(1)
}

func (m *mockService) TraceLogs(ctx context.Context, req extraction.TraceLogsRequest) (*extraction.Outcome, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extraction.Outcome), args.Error(1)
}

func (m *mockService) PersonID(ctx context.Context, recipientType extraction.RecipientType, taxID string) (string, error) {
	args := m.Called(ctx, recipientType, taxID)
	return args.String(0), args.Error(1)
}

func (m *mockService) TaxID(ctx context.Context, personID string) (string, error) {
	args := m.Called(ctx, personID)
	return args.String(0), args.Error(1)
}
