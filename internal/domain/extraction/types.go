// Package extraction defines the domain types shared by the log extraction
// use cases: request variants, download descriptors and terminal outcomes.
package extraction

import (
	"fmt"
	"time"
)

// RecipientType distinguishes natural persons from legal persons in the
// identity service.
type RecipientType string

const (
	RecipientPerson       RecipientType = "PF"
	RecipientOrganization RecipientType = "PG"
)

// IsValid reports whether the value is a known recipient type.
func (t RecipientType) IsValid() bool {
	return t == RecipientPerson || t == RecipientOrganization
}

// DownloadCategory tags the kind of notification artifact a descriptor
// points at.
type DownloadCategory string

const (
	CategoryLegalFact            DownloadCategory = "LEGAL_FACT"
	CategoryNotificationDocument DownloadCategory = "NOTIFICATION_DOCUMENT"
	CategoryPaymentDocument      DownloadCategory = "PAYMENT_DOCUMENT"
)

// DownloadDescriptor is the metadata a download endpoint returns for a
// notification artifact. An empty DownloadURL means the backing file is
// still being prepared; RetryAfter is then the minimum wait before asking
// again.
type DownloadDescriptor struct {
	Key         string
	Category    DownloadCategory
	Filename    string
	DownloadURL string
	RetryAfter  time.Duration
}

// Ready reports whether the artifact can be downloaded now.
func (d DownloadDescriptor) Ready() bool {
	return d.DownloadURL != ""
}

// OutcomeKind tags the terminal result of an extraction request.
type OutcomeKind int

const (
	// OutcomeArchive carries an encrypted zip and its password.
	OutcomeArchive OutcomeKind = iota
	// OutcomeNoContent means the query legitimately matched nothing.
	OutcomeNoContent
	// OutcomeNotReady means downstream artifacts are still being prepared.
	OutcomeNotReady
)

// Outcome is the terminal, non-error result of an extraction request.
// Errors are never encoded in an Outcome; they travel as typed failures.
type Outcome struct {
	Kind       OutcomeKind
	Message    string
	Archive    []byte
	Password   string
	RetryAfter time.Duration
}

// Human readable outcome messages.
const (
	MsgArchiveReady    = "archive created successfully"
	MsgNoLogsFound     = "no logs found for the provided search criteria"
	MsgNoNotifications = "no notifications found for the selected period"
)

// ArchiveOutcome wraps archive bytes and the freshly generated password.
func ArchiveOutcome(zip []byte, password string) *Outcome {
	return &Outcome{
		Kind:     OutcomeArchive,
		Message:  MsgArchiveReady,
		Archive:  zip,
		Password: password,
	}
}

// NoContentOutcome reports a legitimately empty result set.
func NoContentOutcome(message string) *Outcome {
	return &Outcome{Kind: OutcomeNoContent, Message: message}
}

// NotReadyOutcome reports that downstream files are still being prepared
// and suggests a wait, rounded up to whole minutes.
func NotReadyOutcome(wait time.Duration) *Outcome {
	minutes := int64(wait / time.Minute)
	if wait%time.Minute != 0 {
		minutes++
	}
	if minutes < 1 {
		minutes = 1
	}
	return &Outcome{
		Kind:       OutcomeNotReady,
		Message:    fmt.Sprintf("files are still being prepared, retry in %d minutes", minutes),
		RetryAfter: time.Duration(minutes) * time.Minute,
	}
}
