package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// stubCommand records the pdftotext invocation and returns canned output
type stubCommand struct {
	stdout string
	stderr string
	err    error

	name string
	args []string
}

func (s *stubCommand) run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	return []byte(s.stdout), []byte(s.stderr), s.err
}

// exitStatus fails like a process that exited with the given code
type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitStatus) ExitCode() int { return int(e) }

func newTestExtractor(cmd *stubCommand) *Extractor {
	e := NewExtractor(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.pdf.run = cmd.run
	return e
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestValidateFile(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		maxBytes int64
		wantErr  error
	}{
		{name: "pdf", file: "a.pdf", content: "%PDF-1.4"},
		{name: "upper case extension", file: "a.PDF", content: "%PDF-1.4"},
		{name: "text", file: "a.txt", content: "hello"},
		{name: "markdown", file: "a.md", content: "# hello"},
		{name: "html", file: "a.html", content: "<p>hi</p>"},
		{name: "unsupported", file: "a.docx", content: "x", wantErr: ErrUnsupportedType},
		{name: "no extension", file: "README", content: "x", wantErr: ErrUnsupportedType},
		{name: "empty", file: "a.pdf", content: "", wantErr: ErrEmptyFile},
		{name: "too large", file: "a.txt", content: "123456", maxBytes: 5, wantErr: ErrFileTooLarge},
		{name: "at limit", file: "a.txt", content: "12345", maxBytes: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			err := ValidateFile(path, tt.maxBytes)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateFile_Missing(t *testing.T) {
	err := ValidateFile(filepath.Join(t.TempDir(), "missing.pdf"), 0)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestExtract_PDF(t *testing.T) {
	cmd := &stubCommand{stdout: "Purpose\n\n   This policy   applies\fto staff.\n"}
	e := newTestExtractor(cmd)
	path := writeFile(t, "policy.pdf", "%PDF-1.4 fake")

	text, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if text != "Purpose This policy applies to staff." {
		t.Errorf("Unexpected text: %q", text)
	}

	if cmd.name != "pdftotext" {
		t.Errorf("Expected pdftotext, got %s", cmd.name)
	}
	wantArgs := []string{"-layout", "-enc", "UTF-8", "-eol", "unix", path, "-"}
	if strings.Join(cmd.args, " ") != strings.Join(wantArgs, " ") {
		t.Errorf("Expected args %v, got %v", wantArgs, cmd.args)
	}
}

func TestExtract_PDFFailure(t *testing.T) {
	cmd := &stubCommand{err: exitStatus(1), stderr: "Syntax Error: Couldn't find trailer dictionary\n"}
	e := newTestExtractor(cmd)
	path := writeFile(t, "broken.pdf", "not a pdf")

	_, err := e.Extract(context.Background(), path)
	if err == nil {
		t.Fatal("Expected error for failing pdftotext")
	}
	if !strings.Contains(err.Error(), "Couldn't find trailer dictionary") {
		t.Errorf("Expected stderr in error, got %v", err)
	}
	if !errors.Is(err, ErrPDFUnreadable) {
		t.Errorf("Expected ErrPDFUnreadable, got %v", err)
	}
}

func TestPdftotextError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		stderr  string
		want    error
		wantMsg string
	}{
		{name: "missing binary", err: &exec.Error{Name: "pdftotext", Err: exec.ErrNotFound}, want: ErrPdftotextMissing},
		{name: "encrypted", err: exitStatus(1), stderr: "Command Line Error: Incorrect password\n", want: ErrPDFProtected, wantMsg: "Incorrect password"},
		{name: "copy forbidden", err: exitStatus(3), stderr: "Permission Error: Copying of text from this document is not allowed.", want: ErrPDFProtected, wantMsg: "Copying of text"},
		{name: "damaged", err: exitStatus(1), stderr: "Syntax Error: May not be a PDF file", want: ErrPDFUnreadable, wantMsg: "May not be a PDF file"},
		{name: "other exit", err: exitStatus(99), want: exitStatus(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pdftotextError(tt.err, []byte(tt.stderr))
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected %q in error, got %v", tt.wantMsg, err)
			}
		})
	}
}

func TestPdftotextError_TruncatesStderr(t *testing.T) {
	err := pdftotextError(exitStatus(99), []byte(strings.Repeat("x", 4*maxStderr)))
	if len(err.Error()) > maxStderr+64 {
		t.Errorf("Expected stderr to be capped, got %d bytes", len(err.Error()))
	}
}

func TestExtract_PDFCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newTestExtractor(&stubCommand{err: errors.New("signal: killed")})
	path := writeFile(t, "slow.pdf", "%PDF-1.4 slow")

	_, err := e.Extract(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestExtract_NoText(t *testing.T) {
	e := newTestExtractor(&stubCommand{stdout: " \n\f\n "})
	path := writeFile(t, "scan.pdf", "%PDF-1.4 scanned")

	_, err := e.Extract(context.Background(), path)
	if !errors.Is(err, ErrNoText) {
		t.Errorf("Expected ErrNoText, got %v", err)
	}
}

func TestExtract_TextAndHTML(t *testing.T) {
	cmd := &stubCommand{}
	e := newTestExtractor(cmd)

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{
			name:    "plain text",
			file:    "memo.txt",
			content: "Lunch\tplans\n\nfor Friday.",
			want:    "Lunch plans for Friday.",
		},
		{
			name:    "markdown",
			file:    "notes.md",
			content: "# Title\n\nBody text.",
			want:    "# Title Body text.",
		},
		{
			name: "html skips scripts and styles",
			file: "page.html",
			content: `<html><head><style>p{color:red}</style><script>var x = 1;</script></head>
<body><h1>Policy</h1><p>Effective <b>1 January 2025</b>.</p><noscript>enable js</noscript></body></html>`,
			want: "Policy Effective 1 January 2025 .",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			got, err := e.Extract(context.Background(), path)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	if cmd.name != "" {
		t.Error("Expected no external command for text documents")
	}
}

func TestExtract_RejectsBeforeRunning(t *testing.T) {
	cmd := &stubCommand{stdout: "text"}
	e := newTestExtractor(cmd)
	path := writeFile(t, "empty.pdf", "")

	if _, err := e.Extract(context.Background(), path); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("Expected ErrEmptyFile, got %v", err)
	}
	if cmd.name != "" {
		t.Error("Expected pdftotext not to run for an invalid file")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: " \n\t ", want: ""},
		{name: "collapse", in: "  a \n\n b\t\tc  ", want: "a b c"},
		{name: "nfc", in: "cafe\u0301", want: "caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
