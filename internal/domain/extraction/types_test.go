package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecipientType_IsValid(t *testing.T) {
	assert.True(t, RecipientPerson.IsValid())
	assert.True(t, RecipientOrganization.IsValid())
	assert.False(t, RecipientType("XX").IsValid())
	assert.False(t, RecipientType("").IsValid())
}

func TestDownloadDescriptor_Ready(t *testing.T) {
	assert.True(t, DownloadDescriptor{DownloadURL: "http://files/x"}.Ready())
	assert.False(t, DownloadDescriptor{RetryAfter: time.Minute}.Ready())
}

func TestNotReadyOutcome_RoundsUpToWholeMinutes(t *testing.T) {
	tests := []struct {
		wait time.Duration
		want time.Duration
	}{
		{0, time.Minute},
		{10 * time.Second, time.Minute},
		{time.Minute, time.Minute},
		{90 * time.Second, 2 * time.Minute},
		{5 * time.Minute, 5 * time.Minute},
	}

	for _, tt := range tests {
		outcome := NotReadyOutcome(tt.wait)
		assert.Equal(t, OutcomeNotReady, outcome.Kind)
		assert.Equal(t, tt.want, outcome.RetryAfter, "wait %s", tt.wait)
	}
}

func TestArchiveOutcome(t *testing.T) {
	outcome := ArchiveOutcome([]byte("zip"), "pw")
	assert.Equal(t, OutcomeArchive, outcome.Kind)
	assert.Equal(t, MsgArchiveReady, outcome.Message)
	assert.Equal(t, []byte("zip"), outcome.Archive)
	assert.Equal(t, "pw", outcome.Password)
}
