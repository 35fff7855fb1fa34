package archive

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeka/zip"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readArchive(t *testing.T, path, password string) map[string][]byte {
	t.Helper()

	reader, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer reader.Close()

	contents := make(map[string][]byte, len(reader.File))
	for _, f := range reader.File {
		if f.IsEncrypted() {
			f.SetPassword(password)
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		contents[f.Name] = data
	}
	return contents
}

func TestAssembler_Assemble(t *testing.T) {
	a := NewAssembler(t.TempDir(), testLogger())

	staged := filepath.Join(t.TempDir(), "staged.txt")
	require.NoError(t, os.WriteFile(staged, []byte("staged content"), 0o600))

	manifest, err := a.Assemble([]Entry{
		{Name: "logs.txt", Data: []byte("line one\nline two\n")},
		{Name: "acts/notification.pdf", Path: staged},
	}, nil)
	require.NoError(t, err)

	assert.Len(t, manifest.Password, passwordLength)
	assert.Equal(t, 2, manifest.Entries)
	assert.Empty(t, manifest.Failures)

	contents := readArchive(t, manifest.ZipPath, manifest.Password)
	assert.Equal(t, []byte("line one\nline two\n"), contents["logs.txt"])
	assert.Equal(t, []byte("staged content"), contents["acts/notification.pdf"])

	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err), "staged file must be consumed")
}

func TestAssembler_WrongPasswordFails(t *testing.T) {
	a := NewAssembler(t.TempDir(), testLogger())

	manifest, err := a.Assemble([]Entry{{Name: "logs.txt", Data: []byte("secret")}}, nil)
	require.NoError(t, err)

	reader, err := zip.OpenReader(manifest.ZipPath)
	require.NoError(t, err)
	defer reader.Close()

	require.Len(t, reader.File, 1)
	f := reader.File[0]
	require.True(t, f.IsEncrypted())

	f.SetPassword("definitely-wrong")
	rc, err := f.Open()
	if err == nil {
		_, err = io.ReadAll(rc)
		rc.Close()
	}
	assert.Error(t, err)
}

func TestAssembler_FailureSummaryOnlyWhenFailuresExist(t *testing.T) {
	a := NewAssembler(t.TempDir(), testLogger())

	clean, err := a.Assemble([]Entry{{Name: "logs.txt", Data: []byte("ok")}}, nil)
	require.NoError(t, err)
	contents := readArchive(t, clean.ZipPath, clean.Password)
	assert.NotContains(t, contents, failuresEntryName)

	failed, err := a.Assemble(
		[]Entry{{Name: "logs.txt", Data: []byte("ok")}},
		[]Failure{{Key: "doc-1", Category: "NOTIFICATION_DOCUMENT", Reason: "download returned 500"}},
	)
	require.NoError(t, err)
	contents = readArchive(t, failed.ZipPath, failed.Password)
	require.Contains(t, contents, failuresEntryName)
	assert.Contains(t, string(contents[failuresEntryName]), "doc-1")
	assert.Contains(t, string(contents[failuresEntryName]), "download returned 500")
}

func TestAssembler_MissingStagedEntryIsRecorded(t *testing.T) {
	a := NewAssembler(t.TempDir(), testLogger())

	manifest, err := a.Assemble([]Entry{
		{Name: "logs.txt", Data: []byte("ok")},
		{Name: "gone.pdf", Path: filepath.Join(t.TempDir(), "absent.pdf")},
	}, nil)
	require.NoError(t, err)

	require.Len(t, manifest.Failures, 1)
	assert.Equal(t, "gone.pdf", manifest.Failures[0].Key)

	contents := readArchive(t, manifest.ZipPath, manifest.Password)
	assert.Contains(t, contents, failuresEntryName)
	assert.Contains(t, contents, "logs.txt")
	assert.NotContains(t, contents, "gone.pdf")
}

func TestGeneratePassword(t *testing.T) {
	hasClass := func(s, set string) bool {
		for _, c := range s {
			for _, want := range set {
				if c == want {
					return true
				}
			}
		}
		return false
	}

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, pw, passwordLength)
		assert.True(t, hasClass(pw, upperChars), "missing uppercase in %q", pw)
		assert.True(t, hasClass(pw, lowerChars), "missing lowercase in %q", pw)
		assert.True(t, hasClass(pw, digitChars), "missing digit in %q", pw)
		assert.True(t, hasClass(pw, specialChars), "missing special in %q", pw)
		seen[pw] = true
	}
	assert.Greater(t, len(seen), 45, "passwords should not repeat")
}
