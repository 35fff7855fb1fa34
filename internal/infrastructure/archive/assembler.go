// Package archive assembles password protected zip archives from log
// extractions: AES encrypted containers, generated passwords and the CSV
// rendering of monthly exports.
package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/yeka/zip"

	"github.com/notifid/logextractor/internal/domain/errors"
)

// failuresEntryName is the summary file added when some downloads failed.
const failuresEntryName = "download_failures.json"

// Entry is one file destined for the archive. Data carries in-memory
// content; Path points at a file on disk consumed and removed during
// assembly. Exactly one of the two is set.
type Entry struct {
	Name string
	Data []byte
	Path string
}

// Failure records a download that could not be completed. The archive is
// still produced; failures are listed in a summary entry instead.
type Failure struct {
	Key      string `json:"key"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

// Manifest describes a finished archive.
type Manifest struct {
	Password string
	ZipPath  string
	Entries  int
	Failures []Failure
}

// Assembler writes encrypted zip archives under a working directory.
type Assembler struct {
	workDir string
	logger  *slog.Logger
}

// NewAssembler creates an archive assembler rooted at workDir.
func NewAssembler(workDir string, logger *slog.Logger) *Assembler {
	return &Assembler{
		workDir: workDir,
		logger:  logger.With(slog.String("component", "archive")),
	}
}

// Assemble writes entries into a freshly named AES encrypted zip and
// returns its manifest. Failed entries are skipped and reported through
// the failure summary; only container level problems abort assembly.
func (a *Assembler) Assemble(entries []Entry, failures []Failure) (*Manifest, error) {
	password, err := GeneratePassword()
	if err != nil {
		return nil, err
	}

	zipPath := filepath.Join(a.workDir, fmt.Sprintf("extraction-%s.zip", uuid.New().String()))
	out, err := os.Create(zipPath)
	if err != nil {
		return nil, errors.NewArchiveWriteError("creating archive file").WithCause(err)
	}

	writer := zip.NewWriter(out)
	// yeka/zip offers no per-writer compressor override and its package-level
	// RegisterCompressor panics for the built-in Deflate method, so entries use
	// the library's default deflate level rather than flate.BestCompression.

	written := 0
	for _, entry := range entries {
		if err := a.writeEntry(writer, password, entry); err != nil {
			a.logger.Warn("archive entry skipped",
				slog.String("entry", entry.Name),
				slog.String("error", err.Error()),
			)
			failures = append(failures, Failure{Key: entry.Name, Reason: err.Error()})
			continue
		}
		written++
	}

	if len(failures) > 0 {
		summary, err := json.MarshalIndent(failures, "", "  ")
		if err != nil {
			summary = []byte(`[{"reason":"failure summary could not be rendered"}]`)
		}
		if err := a.writeEntry(writer, password, Entry{Name: failuresEntryName, Data: summary}); err != nil {
			writer.Close()
			out.Close()
			os.Remove(zipPath)
			return nil, errors.NewArchiveWriteError("writing failure summary").WithCause(err)
		}
		written++
	}

	if err := writer.Close(); err != nil {
		out.Close()
		os.Remove(zipPath)
		return nil, errors.NewArchiveWriteError("finalizing archive").WithCause(err)
	}
	if err := out.Close(); err != nil {
		os.Remove(zipPath)
		return nil, errors.NewArchiveWriteError("closing archive file").WithCause(err)
	}

	a.logger.Info("archive assembled",
		slog.String("path", zipPath),
		slog.Int("entries", written),
		slog.Int("failures", len(failures)),
	)

	return &Manifest{
		Password: password,
		ZipPath:  zipPath,
		Entries:  written,
		Failures: failures,
	}, nil
}

func (a *Assembler) writeEntry(writer *zip.Writer, password string, entry Entry) error {
	w, err := writer.Encrypt(entry.Name, password, zip.AES256Encryption)
	if err != nil {
		return errors.NewArchiveWriteError("adding archive entry").WithCause(err)
	}

	if entry.Path != "" {
		src, err := os.Open(entry.Path)
		if err != nil {
			return errors.NewArchiveWriteError("opening staged entry").WithCause(err)
		}
		defer os.Remove(entry.Path)
		defer src.Close()
		if _, err := io.Copy(w, src); err != nil {
			return errors.NewArchiveWriteError("copying staged entry").WithCause(err)
		}
		return nil
	}

	if _, err := w.Write(entry.Data); err != nil {
		return errors.NewArchiveWriteError("writing archive entry").WithCause(err)
	}
	return nil
}
