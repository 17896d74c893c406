package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/docucheck/internal/model"
)

// Renderer writes check reports to files and the terminal
type Renderer struct {
	includeFooter bool
	out           io.Writer
}

// NewRenderer creates a renderer that prints summaries to stdout
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter, out: os.Stdout}
}

// SetOutput redirects terminal summaries
func (r *Renderer) SetOutput(w io.Writer) {
	r.out = w
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteJSON(w, report)
	})
}

// RenderMarkdown writes the report as Markdown
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteMarkdown(w, report, r.includeFooter)
	})
}

// RenderXLSX writes one or more reports into a single workbook
func (r *Renderer) RenderXLSX(reports []*model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteXLSX(w, reports)
	})
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(report *model.Report) {
	PrintSummary(r.out, report)
}

// WriteJSON encodes the report as indented JSON
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
