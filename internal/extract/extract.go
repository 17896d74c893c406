package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxFileBytes is the largest document accepted for extraction
const DefaultMaxFileBytes = 10 << 20

var (
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrFileTooLarge    = errors.New("file must be smaller than 10MB")
	ErrEmptyFile       = errors.New("file is empty")
	ErrNoText          = errors.New("document contains no extractable text")
)

// Format identifies how a document's text is obtained
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// FormatOf maps a file extension to a Format
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, true
	case ".txt", ".md", ".markdown":
		return FormatText, true
	case ".html", ".htm":
		return FormatHTML, true
	default:
		return "", false
	}
}

// ValidateFile checks type and size before any extraction work is done.
// maxBytes <= 0 uses DefaultMaxFileBytes.
func ValidateFile(path string, maxBytes int64) error {
	if _, ok := FormatOf(path); !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(path))
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxBytes {
		return ErrFileTooLarge
	}
	if info.Size() == 0 {
		return ErrEmptyFile
	}
	return nil
}

// Config holds extraction settings
type Config struct {
	Pdftotext    string // binary name or absolute path; if empty -> "pdftotext"
	MaxFileBytes int64
}

// Extractor turns a document file into normalized plain text
type Extractor struct {
	cfg Config
	pdf *pdftotext
	log *slog.Logger
}

// NewExtractor creates an extractor that shells out to pdftotext for PDFs
func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = DefaultMaxFileBytes
	}
	return &Extractor{
		cfg: cfg,
		pdf: &pdftotext{bin: cfg.Pdftotext, run: execCommand, log: logger},
		log: logger,
	}
}

// Extract validates the file, picks a strategy by extension and returns
// normalized text. A document without text is an error.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	start := time.Now()
	if err := ValidateFile(path, e.cfg.MaxFileBytes); err != nil {
		return "", err
	}

	format, _ := FormatOf(path)
	var raw string
	var err error
	switch format {
	case FormatPDF:
		raw, err = e.pdf.text(ctx, path)
	case FormatHTML:
		raw, err = e.extractHTML(path)
	default:
		raw, err = readText(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", filepath.Base(path), err)
	}

	text := Normalize(raw)
	if text == "" {
		return "", ErrNoText
	}

	e.log.Debug("extract.document.ok",
		"path", path,
		"format", format,
		"chars", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

func (e *Extractor) extractHTML(path string) (string, error) {
	content, err := readText(path)
	if err != nil {
		return "", err
	}
	return htmlText(content)
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
