package extraction

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/notifid/logextractor/internal/domain/extraction"
	"github.com/notifid/logextractor/internal/domain/logs"
	"github.com/notifid/logextractor/internal/infrastructure/logstore"
	"github.com/notifid/logextractor/internal/infrastructure/notification"
)

type mockLogStore struct {
	mock.Mock
}

func (m *mockLogStore) Search(ctx context.Context, specs []logstore.QuerySpec) ([][]logs.Record, error) {
	args := m.Called(ctx, specs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]logs.Record), args.Error(1)
}

type mockNotificationClient struct {
	mock.Mock
}

func (m *mockNotificationClient) GetNotification(ctx context.Context, iun string) (*notification.Notification, error) {
	args := m.Called(ctx, iun)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *mockNotificationClient) SearchSent(ctx context.Context, senderID, startDate, endDate string) ([]notification.Summary, error) {
	args := m.Called(ctx, senderID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Summary), args.Error(1)
}

func (m *mockNotificationClient) LegalFactMetadata(ctx context.Context, iun, factCategory, factKey string) (extraction.DownloadDescriptor, error) {
	args := m.Called(ctx, iun, factCategory, factKey)
	return args.Get(0).(extraction.DownloadDescriptor), args.Error(1)
}

func (m *mockNotificationClient) DocumentMetadata(ctx context.Context, iun, docIdx string) (extraction.DownloadDescriptor, error) {
	args := m.Called(ctx, iun, docIdx)
	return args.Get(0).(extraction.DownloadDescriptor), args.Error(1)
}

func (m *mockNotificationClient) PaymentMetadata(ctx context.Context, iun string, recipientIdx int, attachmentName string) (extraction.DownloadDescriptor, error) {
	args := m.Called(ctx, iun, recipientIdx, attachmentName)
	return args.Get(0).(extraction.DownloadDescriptor), args.Error(1)
}

func (m *mockNotificationClient) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	args := m.Called(ctx, fileURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockIdentityResolver struct {
	mock.Mock
}

func (m *mockIdentityResolver) PersonID(ctx context.Context, recipientType extraction.RecipientType, taxID string) (string, error) {
	args := m.Called(ctx, recipientType, taxID)
	return args.String(0), args.Error(1)
}

func (m *mockIdentityResolver) TaxID(ctx context.Context, personID string) (string, error) {
	args := m.Called(ctx, personID)
	return args.String(0), args.Error(1)
}

func (m *mockIdentityResolver) OrganizationName(ctx context.Context, orgID string) (string, error) {
	args := m.Called(ctx, orgID)
	return args.String(0), args.Error(1)
}

func (m *mockIdentityResolver) EncodedOrganizationID(ctx context.Context, ipaCode string) (string, error) {
	args := m.Called(ctx, ipaCode)
	return args.String(0), args.Error(1)
}
