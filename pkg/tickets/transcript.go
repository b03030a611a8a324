package tickets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jacobbrewer1/ticketeer/pkg/errs"
	"github.com/Jacobbrewer1/ticketeer/pkg/logging"
)

const (
	// NoReason is used when a ticket is closed without a reason.
	NoReason = "none given"

	// NotClaimed is the claimant of a ticket nobody claimed.
	NotClaimed = "not claimed"

	// EmbedPlaceholder replaces the content of messages that only carry embeds or files.
	EmbedPlaceholder = "[embed/attachment]"

	transcriptTimeFormat = "2006-01-02 15:04:05"
)

// TranscriptHeader is the header block of a transcript.
type TranscriptHeader struct {
	TicketName string
	ServerName string
	Creator    string
	ClosedBy   string
	Reason     string
}

// RenderTranscript renders the header followed by one line per message.
func RenderTranscript(h *TranscriptHeader, msgs []HistoryMessage) string {
	reason := h.Reason
	if reason == "" {
		reason = NoReason
	}

	sb := new(strings.Builder)
	fmt.Fprintf(sb, "TRANSCRIPT - TICKET %s\n", h.TicketName)
	fmt.Fprintf(sb, "Server: %s\n", h.ServerName)
	fmt.Fprintf(sb, "Creator: %s\n", h.Creator)
	fmt.Fprintf(sb, "Closed by: %s\n", h.ClosedBy)
	fmt.Fprintf(sb, "Reason: %s\n", reason)
	sb.WriteString(strings.Repeat("=", 50))
	sb.WriteString("\n\n")

	for _, m := range msgs {
		content := m.Content
		if content == "" && m.HasEmbedsOrAttachments {
			content = EmbedPlaceholder
		}
		fmt.Fprintf(sb, "[%s] %s: %s\n", m.Timestamp.UTC().Format(transcriptTimeFormat), m.Author, content)
	}
	return sb.String()
}

// TranscriptFileName names a transcript by panel key, ticket number and close time.
func TranscriptFileName(panelKey string, number int, closedAt time.Time) string {
	return fmt.Sprintf("ticket-%s-%d-%d.txt", panelKey, number, closedAt.Unix())
}

// TranscriptStore archives transcripts. They are never read back.
type TranscriptStore interface {
	Save(ctx context.Context, name, content string) error
}

// FileTranscripts writes transcripts as text files into a directory.
type FileTranscripts struct {
	// l is the logger.
	l *slog.Logger

	// dir is the transcript directory.
	dir string
}

// NewFileTranscripts creates the directory if needed.
func NewFileTranscripts(l *slog.Logger, dir string) (*FileTranscripts, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating transcript directory: %w", err)
	}
	return &FileTranscripts{
		l:   l,
		dir: dir,
	}, nil
}

// Save writes the transcript file. Only the last element of name is used, so the file always
// lands in the transcript directory.
func (f *FileTranscripts) Save(_ context.Context, name, content string) error {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return fmt.Errorf("%w: transcript name %q", errs.ErrInvalidValue, name)
	}
	path := filepath.Join(f.dir, base)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("error writing transcript: %w", err)
	}
	f.l.Debug("Transcript saved", slog.String("path", path), slog.String(logging.KeyTicket, name))
	return nil
}
