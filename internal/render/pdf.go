// Package render turns processed document HTML into PDF bytes with a headless browser.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/seusdados/crm-service/internal/config"
)

var ErrEmptyDocument = errors.New("document content is empty")

// Renderer converts an HTML document into a PDF.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
	Close() error
}

type paperSize struct {
	width, height float64 // inches
}

var paperSizes = map[string]paperSize{
	"A4":     {8.27, 11.69},
	"LETTER": {8.5, 11},
	"LEGAL":  {8.5, 14},
}

// PDFRenderer drives a single Chrome instance through rod. One page is opened per render.
type PDFRenderer struct {
	mu      sync.Mutex
	cfg     config.RendererConfig
	browser *rod.Browser
}

func NewPDFRenderer(cfg config.RendererConfig) *PDFRenderer {
	return &PDFRenderer{cfg: cfg}
}

func (r *PDFRenderer) connect(ctx context.Context) (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		if _, err := r.browser.Version(); err == nil {
			return r.browser, nil
		}
		_ = r.browser.Close()
		r.browser = nil
	}

	controlURL := r.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		if r.cfg.BrowserBin != "" {
			l = l.Bin(r.cfg.BrowserBin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	r.browser = browser
	return browser, nil
}

func (r *PDFRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyDocument
	}

	browser, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}

	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	page, err := browser.Context(ctx).Timeout(timeout).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for document: %w", err)
	}

	stream, err := page.PDF(PrintOptions(r.cfg.PaperFormat))
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	return data, nil
}

func (r *PDFRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

// PrintOptions maps a paper format name to Chrome print settings. Unknown formats fall back to A4.
func PrintOptions(format string) *proto.PagePrintToPDF {
	size, ok := paperSizes[strings.ToUpper(format)]
	if !ok {
		size = paperSizes["A4"]
	}
	margin := 0.4
	return &proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      &size.width,
		PaperHeight:     &size.height,
		MarginTop:       &margin,
		MarginBottom:    &margin,
		MarginLeft:      &margin,
		MarginRight:     &margin,
	}
}
