package extraction

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/notifid/logextractor/internal/domain/errors"
	"github.com/notifid/logextractor/internal/domain/extraction"
	"github.com/notifid/logextractor/internal/domain/logs"
	"github.com/notifid/logextractor/internal/infrastructure/archive"
	"github.com/notifid/logextractor/internal/infrastructure/logstore"
	"github.com/notifid/logextractor/internal/infrastructure/notification"
)

// Log store filter fields.
const (
	filterFieldUID     = "uid.keyword"
	filterFieldIUN     = "iun.keyword"
	filterFieldTraceID = "root_trace_id"
	filterFieldJTI     = "jti.keyword"
)

// notificationWindowMonths is the span of the window derived from a
// notification's legal start date.
const notificationWindowMonths = 3

// timestampLayout renders derived window bounds for the log store.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// Config carries the orchestrator settings.
type Config struct {
	Index          string
	TimestampField string
	LogFileName    string
	CSVPageSize    int
}

type service struct {
	cfg      Config
	store    LogStore
	notifs   NotificationClient
	identity IdentityResolver
	archiver Archiver
	redactor *Redactor
	sleep    SleepFunc
	logger   *slog.Logger
}

// NewService wires the extraction orchestrator.
func NewService(
	cfg Config,
	store LogStore,
	notifs NotificationClient,
	identity IdentityResolver,
	archiver Archiver,
	logger *slog.Logger,
) Service {
	if cfg.LogFileName == "" {
		cfg.LogFileName = "logs.txt"
	}
	return &service{
		cfg:      cfg,
		store:    store,
		notifs:   notifs,
		identity: identity,
		archiver: archiver,
		redactor: NewRedactor(identity),
		sleep:    ContextSleep,
		logger:   logger.With(slog.String("component", "extraction")),
	}
}

// PersonActivityLogs extracts the activity logs of one person. With a
// person identifier the explicit date window applies; with an IUN the
// window derives from the notification's legal start date. The
// deanonymized window variant resolves the tax id to a pseudonymous
// identifier before querying; either way deanonymization resolves
// identities on the result records.
func (s *service) PersonActivityLogs(ctx context.Context, req extraction.PersonLogsRequest) (*extraction.Outcome, error) {
	start := time.Now()
	logger := s.logger.With(slog.String("ticket", req.TicketNumber), slog.String("use_case", "person_logs"))

	var spec logstore.QuerySpec
	if req.IUN != "" {
		n, err := s.notifs.GetNotification(ctx, req.IUN)
		if err != nil {
			return nil, err
		}
		from, to, err := derivedWindow(n.LegalStartDate())
		if err != nil {
			return nil, err
		}
		spec = s.querySpec(map[string]string{filterFieldIUN: req.IUN}, from, to)
	} else {
		// The iun branch never needs a person identifier; resolving the
		// tax id there would be a wasted identity round trip.
		personID := req.PersonID
		if req.Deanonymize && req.TaxID != "" {
			resolved, err := s.identity.PersonID(ctx, req.RecipientType, req.TaxID)
			if err != nil {
				return nil, err
			}
			personID = resolved
		}
		spec = s.querySpec(map[string]string{filterFieldUID: personID}, req.DateFrom, req.DateTo)
	}

	records, err := s.searchOne(ctx, spec)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "log query finished",
		slog.Int("records", len(records)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	if len(records) == 0 {
		return extraction.NoContentOutcome(extraction.MsgNoLogsFound), nil
	}

	if req.Deanonymize {
		records, err = s.redactor.Deanonymize(ctx, records)
		if err != nil {
			return nil, err
		}
	}

	outcome, err := s.archiveLogs(records, nil, nil)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "extraction finished", slog.Int64("elapsed_ms", time.Since(start).Milliseconds()))
	return outcome, nil
}

// NotificationBundle collects every artifact of a notification together
// with its logs. When any artifact is still being prepared after the
// single readiness retry, the whole request resolves to a not-ready
// outcome carrying the longest pending wait; nothing is downloaded.
func (s *service) NotificationBundle(ctx context.Context, req extraction.NotificationBundleRequest) (*extraction.Outcome, error) {
	start := time.Now()
	logger := s.logger.With(slog.String("ticket", req.TicketNumber), slog.String("use_case", "notification_bundle"))

	n, err := s.notifs.GetNotification(ctx, req.IUN)
	if err != nil {
		return nil, err
	}

	ops := s.artifactOps(n)
	descriptors := make([]extraction.DownloadDescriptor, 0, len(ops))
	var pendingWait time.Duration
	pending := false
	for _, op := range ops {
		desc, err := fetchReady(ctx, s.sleep, op)
		if err != nil {
			return nil, err
		}
		if !desc.Ready() {
			pending = true
			if desc.RetryAfter > pendingWait {
				pendingWait = desc.RetryAfter
			}
		}
		descriptors = append(descriptors, desc)
	}
	if pending {
		logger.InfoContext(ctx, "artifacts not ready", slog.Duration("wait", pendingWait))
		return extraction.NotReadyOutcome(pendingWait), nil
	}

	var entries []archive.Entry
	var failures []archive.Failure
	for _, desc := range descriptors {
		data, err := s.notifs.DownloadFile(ctx, desc.DownloadURL)
		if err != nil {
			logger.WarnContext(ctx, "artifact download failed",
				slog.String("key", desc.Key),
				slog.String("error", err.Error()),
			)
			failures = append(failures, archive.Failure{
				Key:      desc.Key,
				Category: string(desc.Category),
				Reason:   err.Error(),
			})
			continue
		}
		entries = append(entries, archive.Entry{Name: entryName(desc), Data: data})
	}

	from, to, err := derivedWindow(n.LegalStartDate())
	if err != nil {
		return nil, err
	}
	records, err := s.searchOne(ctx, s.querySpec(map[string]string{filterFieldIUN: req.IUN}, from, to))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 && len(entries) == 0 && len(failures) == 0 {
		return extraction.NoContentOutcome(extraction.MsgNoLogsFound), nil
	}

	outcome, err := s.archiveLogs(records, entries, failures)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "extraction finished",
		slog.Int("files", len(entries)),
		slog.Int("failures", len(failures)),
		slog.Int("records", len(records)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return outcome, nil
}

// MonthlyExport renders every notification an organization sent within the
// month window as paged CSV files inside an encrypted archive.
func (s *service) MonthlyExport(ctx context.Context, req extraction.MonthlyExportRequest) (*extraction.Outcome, error) {
	start := time.Now()
	logger := s.logger.With(slog.String("ticket", req.TicketNumber), slog.String("use_case", "monthly_export"))

	from, to, err := monthWindow(req.StartMonth, req.EndMonth)
	if err != nil {
		return nil, err
	}

	senderID, err := s.identity.EncodedOrganizationID(ctx, req.IPACode)
	if err != nil {
		return nil, err
	}

	summaries, err := s.notifs.SearchSent(ctx, senderID, from, to)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "notification search finished",
		slog.Int("notifications", len(summaries)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	if len(summaries) == 0 {
		return extraction.NoContentOutcome(extraction.MsgNoNotifications), nil
	}

	rows := make([]archive.NotificationRow, 0, len(summaries))
	for _, summary := range summaries {
		detail, err := s.notifs.GetNotification(ctx, summary.IUN)
		if err != nil {
			return nil, err
		}
		rows = append(rows, archive.NotificationRow{
			IUN:                  summary.IUN,
			SentAt:               summary.SentAt,
			LegalFactGeneratedAt: detail.LegalStartDate(),
			Subject:              summary.Subject,
			Recipients:           archive.JoinRecipients(summary.Recipients),
		})
	}

	pages, err := archive.MarshalPages(rows, s.cfg.CSVPageSize)
	if err != nil {
		return nil, err
	}
	entries := make([]archive.Entry, 0, len(pages))
	for i, page := range pages {
		entries = append(entries, archive.Entry{
			Name: fmt.Sprintf("notifications-%d.csv", i+1),
			Data: page,
		})
	}

	outcome, err := s.archiveEntries(entries, nil)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "extraction finished",
		slog.Int("pages", len(pages)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return outcome, nil
}

// TraceLogs extracts logs correlated by a trace id or a session id within
// an explicit date window.
func (s *service) TraceLogs(ctx context.Context, req extraction.TraceLogsRequest) (*extraction.Outcome, error) {
	start := time.Now()
	logger := s.logger.With(slog.String("ticket", req.TicketNumber), slog.String("use_case", "trace_logs"))

	field, value := filterFieldTraceID, req.TraceID
	if req.SessionID != "" {
		field, value = filterFieldJTI, req.SessionID
	}

	records, err := s.searchOne(ctx, s.querySpec(map[string]string{field: value}, req.DateFrom, req.DateTo))
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "log query finished",
		slog.Int("records", len(records)),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	if len(records) == 0 {
		return extraction.NoContentOutcome(extraction.MsgNoLogsFound), nil
	}

	if req.Deanonymize {
		records, err = s.redactor.Deanonymize(ctx, records)
		if err != nil {
			return nil, err
		}
	}

	return s.archiveLogs(records, nil, nil)
}

// PersonID resolves a recipient's tax id to its pseudonymous identifier.
func (s *service) PersonID(ctx context.Context, recipientType extraction.RecipientType, taxID string) (string, error) {
	return s.identity.PersonID(ctx, recipientType, taxID)
}

// TaxID resolves a pseudonymous identifier back to the tax id.
func (s *service) TaxID(ctx context.Context, personID string) (string, error) {
	return s.identity.TaxID(ctx, personID)
}

func (s *service) querySpec(equality map[string]string, from, to string) logstore.QuerySpec {
	spec := logstore.QuerySpec{
		Index:     s.cfg.Index,
		Equality:  equality,
		SortField: s.cfg.TimestampField,
		SortOrder: logstore.SortAsc,
	}
	if from != "" || to != "" {
		spec.Range = &logstore.RangeFilter{Field: s.cfg.TimestampField, From: from, To: to}
	}
	return spec
}

func (s *service) searchOne(ctx context.Context, spec logstore.QuerySpec) ([]logs.Record, error) {
	results, err := s.store.Search(ctx, []logstore.QuerySpec{spec})
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, errors.NewUpstreamUnavailableError("log store", "missing search response")
	}
	return results[0], nil
}

// artifactOps enumerates the metadata lookups for every artifact of a
// notification: legal facts, attached documents and payment attachments.
func (s *service) artifactOps(n *notification.Notification) []metadataOp {
	var ops []metadataOp
	iun := n.IUN

	for _, fact := range n.LegalFacts() {
		ops = append(ops, func(ctx context.Context) (extraction.DownloadDescriptor, error) {
			return s.notifs.LegalFactMetadata(ctx, iun, fact.Category, fact.Key)
		})
	}
	for _, doc := range n.Documents {
		ops = append(ops, func(ctx context.Context) (extraction.DownloadDescriptor, error) {
			return s.notifs.DocumentMetadata(ctx, iun, doc.DocIdx)
		})
	}
	for idx, recipient := range n.Recipients {
		for name := range recipient.Payment.Keys() {
			ops = append(ops, func(ctx context.Context) (extraction.DownloadDescriptor, error) {
				return s.notifs.PaymentMetadata(ctx, iun, idx, name)
			})
		}
	}
	return ops
}

// archiveLogs renders records as one text file and assembles it together
// with any downloaded entries.
func (s *service) archiveLogs(records []logs.Record, entries []archive.Entry, failures []archive.Failure) (*extraction.Outcome, error) {
	if len(records) > 0 {
		entries = append(entries, archive.Entry{Name: s.cfg.LogFileName, Data: renderLogText(records)})
	}
	return s.archiveEntries(entries, failures)
}

func (s *service) archiveEntries(entries []archive.Entry, failures []archive.Failure) (*extraction.Outcome, error) {
	manifest, err := s.archiver.Assemble(entries, failures)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(manifest.ZipPath)
	if err != nil {
		return nil, errors.NewArchiveWriteError("reading finished archive").WithCause(err)
	}
	// The zip leaves the working directory with this request.
	os.Remove(manifest.ZipPath)
	return extraction.ArchiveOutcome(data, manifest.Password), nil
}

func renderLogText(records []logs.Record) []byte {
	var buf bytes.Buffer
	for _, record := range records {
		buf.WriteString(string(record))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func entryName(desc extraction.DownloadDescriptor) string {
	if desc.Filename != "" {
		return desc.Filename
	}
	return desc.Key
}

// derivedWindow spans three months starting at a notification's legal
// start timestamp.
func derivedWindow(legalStart string) (string, string, error) {
	t, err := parseTimestamp(legalStart)
	if err != nil {
		return "", "", errors.NewInvalidQueryError(
			fmt.Sprintf("unparsable legal start date %q", legalStart))
	}
	from := t.UTC()
	to := from.AddDate(0, notificationWindowMonths, 0)
	return from.Format(timestampLayout), to.Format(timestampLayout), nil
}

// monthWindow converts an inclusive YYYY-MM month range into timestamp
// bounds covering the whole of the end month.
func monthWindow(startMonth, endMonth string) (string, string, error) {
	start, err := time.Parse("2006-01", startMonth)
	if err != nil {
		return "", "", errors.NewInvalidQueryError(fmt.Sprintf("invalid start month %q", startMonth))
	}
	end, err := time.Parse("2006-01", endMonth)
	if err != nil {
		return "", "", errors.NewInvalidQueryError(fmt.Sprintf("invalid end month %q", endMonth))
	}
	if end.Before(start) {
		return "", "", errors.NewInvalidQueryError("end month precedes start month")
	}
	return start.Format(timestampLayout), end.AddDate(0, 1, 0).Format(timestampLayout), nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
