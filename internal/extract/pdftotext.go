package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

var (
	ErrPdftotextMissing = errors.New("pdftotext not found (install poppler-utils)")
	ErrPDFUnreadable    = errors.New("PDF could not be opened")
	ErrPDFProtected     = errors.New("PDF is password protected or forbids text copying")
)

// pdftotext exit statuses
const (
	exitOpenFailed  = 1
	exitPermissions = 3
)

// maxStderr caps how much of pdftotext's stderr ends up in an error
const maxStderr = 512

// runCommand executes bin and returns its output streams
type runCommand func(ctx context.Context, bin string, args ...string) (stdout, stderr []byte, err error)

func execCommand(ctx context.Context, bin string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	err := cmd.Run()
	return out.Bytes(), errb.Bytes(), err
}

// pdftotext wraps poppler's pdftotext binary
type pdftotext struct {
	bin string
	run runCommand
	log *slog.Logger
}

// pdftotextArgs keeps the page layout and writes UTF-8 with unix line
// endings to stdout
func pdftotextArgs(path string) []string {
	return []string{"-layout", "-enc", "UTF-8", "-eol", "unix", path, "-"}
}

func (p *pdftotext) text(ctx context.Context, path string) (string, error) {
	start := time.Now()

	stdout, stderr, err := p.run(ctx, p.bin, pdftotextArgs(path)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("pdftotext: %w", ctxErr)
		}
		err = pdftotextError(err, stderr)
		p.log.Warn("extract.pdftotext.failed",
			"path", path,
			"elapsed_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", err
	}

	p.log.Debug("extract.pdftotext.ok",
		"path", path,
		"elapsed_ms", time.Since(start).Milliseconds(),
		"stdout_bytes", len(stdout),
	)
	return string(stdout), nil
}

// pdftotextError maps a failed run onto the sentinel errors, keeping
// pdftotext's own message.
func pdftotextError(err error, stderr []byte) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrPdftotextMissing, err)
	}

	msg := strings.TrimSpace(string(stderr))
	if len(msg) > maxStderr {
		msg = msg[:maxStderr] + "..."
	}

	cause := err
	var exited interface{ ExitCode() int }
	if errors.As(err, &exited) {
		switch {
		// Encrypted files fail to open with this message
		case strings.Contains(msg, "Incorrect password"), exited.ExitCode() == exitPermissions:
			cause = ErrPDFProtected
		case exited.ExitCode() == exitOpenFailed:
			cause = ErrPDFUnreadable
		}
	}

	if msg == "" {
		return fmt.Errorf("pdftotext: %w", cause)
	}
	return fmt.Errorf("pdftotext: %w: %s", cause, msg)
}
