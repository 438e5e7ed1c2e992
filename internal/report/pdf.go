package report

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	apperrors "taxicli/internal/errors"
)

// A4 in inches.
const (
	a4Width  = 8.27
	a4Height = 11.69
	a4Margin = 0.4
)

const defaultPrintTimeout = 60 * time.Second

// ChromePathEnv overrides Chrome discovery.
const ChromePathEnv = "TAXI_CHROME_PATH"

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
}

// FindChrome returns the Chrome binary to print with.
func FindChrome() (string, bool) {
	if p := os.Getenv(ChromePathEnv); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	for _, name := range chromeCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p, true
		}
	}
	return "", false
}

// PDFPrinter prints HTML to PDF through headless Chrome
type PDFPrinter struct {
	execPath string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPDFPrinter creates a printer. An empty execPath lets chromedp find
// Chrome itself; a zero timeout uses one minute.
func NewPDFPrinter(execPath string, timeout time.Duration, logger *slog.Logger) *PDFPrinter {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultPrintTimeout
	}
	return &PDFPrinter{
		execPath: execPath,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "pdf_printer")),
	}
}

// Print loads html into a blank page and prints it on A4 with backgrounds.
func (p *PDFPrinter) Print(ctx context.Context, html []byte) ([]byte, error) {
	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts, chromedp.Flag("headless", true), chromedp.DisableGPU)
	if p.execPath != "" {
		opts = append(opts, chromedp.ExecPath(p.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, p.timeout)
	defer cancelTimeout()

	var pdf []byte
	err := chromedp.Run(taskCtx,
		p.timedAction("Navigate", chromedp.Navigate("about:blank")),
		p.timedAction("SetContent", chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		})),
		p.timedAction("PrintToPDF", chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(a4Margin).
				WithMarginBottom(a4Margin).
				WithMarginLeft(a4Margin).
				WithMarginRight(a4Margin).
				Do(ctx)
			pdf = buf
			return err
		})),
	)
	if err != nil {
		return nil, apperrors.NewRenderError("failed to print pdf", err)
	}
	return pdf, nil
}

// PrintFile prints html and writes the PDF to path.
func (p *PDFPrinter) PrintFile(ctx context.Context, html []byte, path string) error {
	pdf, err := p.Print(ctx, html)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err).WithContext("path", path)
	}
	if err := os.WriteFile(path, pdf, 0644); err != nil {
		return apperrors.NewStorageError("failed to write pdf", err).WithContext("path", path)
	}

	p.logger.Info("pdf written",
		slog.String("path", path),
		slog.Int("bytes", len(pdf)))
	return nil
}

func (p *PDFPrinter) timedAction(name string, act chromedp.Action) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		start := time.Now()
		err := act.Do(ctx)
		p.logger.Debug("chrome action",
			slog.String("action", name),
			slog.Duration("duration", time.Since(start)),
			slog.Bool("ok", err == nil))
		return err
	})
}
