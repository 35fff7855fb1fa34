// Package extraction orchestrates the log extraction use cases: person
// activity logs, notification document bundles, monthly CSV exports and
// trace or session log exports.
package extraction

import (
	"context"
	"time"

	"github.com/notifid/logextractor/internal/domain/extraction"
	"github.com/notifid/logextractor/internal/domain/logs"
	"github.com/notifid/logextractor/internal/infrastructure/archive"
	"github.com/notifid/logextractor/internal/infrastructure/logstore"
	"github.com/notifid/logextractor/internal/infrastructure/notification"
)

// Service exposes one call per extraction use case. Each call returns a
// terminal outcome or a typed error; no in-progress state survives the call.
type Service interface {
	PersonActivityLogs(ctx context.Context, req extraction.PersonLogsRequest) (*extraction.Outcome, error)
	NotificationBundle(ctx context.Context, req extraction.NotificationBundleRequest) (*extraction.Outcome, error)
	MonthlyExport(ctx context.Context, req extraction.MonthlyExportRequest) (*extraction.Outcome, error)
	TraceLogs(ctx context.Context, req extraction.TraceLogsRequest) (*extraction.Outcome, error)
	PersonID(ctx context.Context, recipientType extraction.RecipientType, taxID string) (string, error)
	TaxID(ctx context.Context, personID string) (string, error)
}

// LogStore runs batched searches against the log store, returning one
// ordered record list per query spec.
type LogStore interface {
	Search(ctx context.Context, specs []logstore.QuerySpec) ([][]logs.Record, error)
}

// NotificationClient is the notification platform surface the orchestrator
// needs: details, paged search, download metadata and raw bytes.
type NotificationClient interface {
	GetNotification(ctx context.Context, iun string) (*notification.Notification, error)
	SearchSent(ctx context.Context, senderID, startDate, endDate string) ([]notification.Summary, error)
	LegalFactMetadata(ctx context.Context, iun, factCategory, factKey string) (extraction.DownloadDescriptor, error)
	DocumentMetadata(ctx context.Context, iun, docIdx string) (extraction.DownloadDescriptor, error)
	PaymentMetadata(ctx context.Context, iun string, recipientIdx int, attachmentName string) (extraction.DownloadDescriptor, error)
	DownloadFile(ctx context.Context, fileURL string) ([]byte, error)
}

// IdentityResolver maps pseudonymous identifiers to real ones and back.
// Every call is an independent round trip; results are never cached.
type IdentityResolver interface {
	PersonID(ctx context.Context, recipientType extraction.RecipientType, taxID string) (string, error)
	TaxID(ctx context.Context, personID string) (string, error)
	OrganizationName(ctx context.Context, orgID string) (string, error)
	EncodedOrganizationID(ctx context.Context, ipaCode string) (string, error)
}

// Archiver produces encrypted archives from collected entries.
type Archiver interface {
	Assemble(entries []archive.Entry, failures []archive.Failure) (*archive.Manifest, error)
}

// SleepFunc suspends the calling goroutine for d, honoring cancellation.
type SleepFunc func(ctx context.Context, d time.Duration) error
