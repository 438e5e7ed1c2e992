package report

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPDFPrinterDefaults(t *testing.T) {
	p := NewPDFPrinter("", 0, nil)
	assert.Equal(t, defaultPrintTimeout, p.timeout)

	p = NewPDFPrinter("/opt/chrome", 5*time.Second, nil)
	assert.Equal(t, "/opt/chrome", p.execPath)
	assert.Equal(t, 5*time.Second, p.timeout)
}

func TestFindChromeEnvOverride(t *testing.T) {
	t.Setenv(ChromePathEnv, filepath.Join(t.TempDir(), "missing-chrome"))

	path, ok := FindChrome()
	if ok {
		assert.NotEqual(t, filepath.Base(path), "missing-chrome")
	}
}

func TestPDFPrinter_PrintFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chrome test in short mode")
	}
	chrome, ok := FindChrome()
	if !ok {
		t.Skip("chrome not available")
	}

	html, err := NewRenderer(nil).Render(Input{Summary: testSummary()})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.pdf")
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	p := NewPDFPrinter(chrome, 60*time.Second, nil)
	require.NoError(t, p.PrintFile(ctx, html, path))

	pdf, err := p.Print(ctx, []byte("<html><body>hello</body></html>"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.FileExists(t, path)
}
