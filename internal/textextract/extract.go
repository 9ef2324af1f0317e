// Package textextract acquires normalized text from document files on disk.
package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"doccheck/pkg/platform/sentinel"
)

var (
	// ErrUnsupportedType is returned for file extensions with no extractor.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrUnreadable is returned when a document yields no usable text.
	ErrUnreadable = errors.New("document content unreadable")
	// ErrOutsideRoot is returned by Confine for paths escaping the root.
	ErrOutsideRoot = errors.New("file path is outside the upload directory")
)

const ocrWaitDelay = 2 * time.Second

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// Supported reports whether path has an extension the extractor handles.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pdf" || ext == ".txt" || imageExtensions[ext]
}

// Extractor reads PDFs natively and images through the tesseract binary.
type Extractor struct {
	tesseract  string
	ocrTimeout time.Duration
	logger     *slog.Logger
}

type Option func(*Extractor)

// WithTesseract sets the OCR binary. An empty path disables image support.
func WithTesseract(path string) Option {
	return func(e *Extractor) {
		e.tesseract = path
	}
}

func WithOCRTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.ocrTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor using "tesseract" from PATH for images.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		tesseract:  "tesseract",
		ocrTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Extract returns the normalized text of the document at path. A missing file
// wraps sentinel.ErrNotFound; a file that yields no text wraps ErrUnreadable.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("document %s: %w", filepath.Base(path), sentinel.ErrNotFound)
		}
		return "", fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("document %s is a directory: %w", filepath.Base(path), ErrUnsupportedType)
	}

	var raw string
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		raw, err = readPDF(path)
	case ext == ".txt":
		raw, err = readPlain(path)
	case imageExtensions[ext]:
		raw, err = e.ocr(ctx, path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if err != nil {
		return "", err
	}

	text := Normalize(raw)
	if text == "" {
		return "", fmt.Errorf("document %s: %w", filepath.Base(path), ErrUnreadable)
	}
	e.logger.DebugContext(ctx, "document text extracted",
		"document", filepath.Base(path),
		"chars", len(text),
	)
	return text, nil
}

// Normalize lowercases text and collapses every whitespace run to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func readPlain(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return string(b), nil
}

func readPDF(path string) (text string, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: malformed pdf: %v", ErrUnreadable, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return buf.String(), nil
}

func (e *Extractor) ocr(ctx context.Context, path string) (string, error) {
	if e.tesseract == "" {
		return "", fmt.Errorf("%w: image OCR disabled", ErrUnsupportedType)
	}
	bin, err := exec.LookPath(e.tesseract)
	if err != nil {
		return "", fmt.Errorf("ocr engine %s: %w", e.tesseract, sentinel.ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, e.ocrTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, path, "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of the engine may keep its pipes open after it is killed.
	cmd.WaitDelay = ocrWaitDelay
	if err := cmd.Run(); err != nil {
		e.logger.WarnContext(ctx, "ocr failed",
			"document", filepath.Base(path),
			"stderr", strings.TrimSpace(stderr.String()),
			"error", err,
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("ocr %s: %w", filepath.Base(path), ctxErr)
		}
		return "", fmt.Errorf("%w: ocr failed: %v", ErrUnreadable, err)
	}
	return stdout.String(), nil
}

// Confine resolves name inside root and rejects paths that escape it.
func Confine(root, name string) (string, error) {
	if name == "" {
		return "", errors.New("file path is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve upload root: %w", err)
	}

	var candidate string
	if filepath.IsAbs(name) {
		candidate = filepath.Clean(name)
	} else {
		candidate = filepath.Join(absRoot, name)
	}

	if !within(absRoot, candidate) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, name)
	}

	// Symlinks are followed before the final check. A path that does not
	// resolve is left to Extract, which reports it as not found.
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return candidate, nil
	}
	realCandidate, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return candidate, nil
	}
	if !within(realRoot, realCandidate) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, name)
	}
	return candidate, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
