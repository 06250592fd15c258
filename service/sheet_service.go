package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"product-image-studio/collection"
	"product-image-studio/logging"
)

//go:embed templates/sheet.html
var sheetTemplate string

// SheetImage is one cell of a contact sheet.
type SheetImage struct {
	Reference   string
	URL         string
	DisplayOnly bool
}

// SheetGroup is one category section of a contact sheet.
type SheetGroup struct {
	Category string
	Images   []SheetImage
}

// SheetData is the template input of a contact sheet.
type SheetData struct {
	ProductKey  string
	Role        string
	ImageCount  int
	GeneratedAt string
	Groups      []SheetGroup
}

// SheetService renders collections as HTML contact sheets and prints them to PDF
type SheetService struct {
	baseURL    string
	chromePath string
	tmpl       *template.Template
	log        *logging.Logger
}

// NewSheetService creates a new SheetService. baseURL is where the studio serves
// the render and image endpoints (e.g. "http://localhost:8080").
func NewSheetService(baseURL, chromePath string, log *logging.Logger) (*SheetService, error) {
	tmpl, err := template.New("sheet").Parse(sheetTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if log == nil {
		log = logging.Nop()
	}
	return &SheetService{baseURL: baseURL, chromePath: chromePath, tmpl: tmpl, log: log}, nil
}

// BuildSheet converts category groups into template data. cached reports the
// cache entry of a display item key.
func (s *SheetService) BuildSheet(role, productKey string, mode collection.KeyMode, groups []collection.CategoryGroup, cached func(key string) (collection.CacheEntry, bool)) SheetData {
	data := SheetData{
		ProductKey:  productKey,
		Role:        role,
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
	}
	for _, g := range groups {
		section := SheetGroup{Category: g.Category}
		for _, item := range g.Members {
			key := item.Key(mode)
			img := SheetImage{
				Reference: item.Reference,
				URL:       fmt.Sprintf("%s/admin/workspace/%s/image?key=%s&size=thumb", s.baseURL, role, url.QueryEscape(key)),
			}
			if entry, ok := cached(key); ok {
				img.DisplayOnly = entry.DisplayOnly()
			}
			if img.DisplayOnly {
				img.URL = item.Reference
			}
			section.Images = append(section.Images, img)
			data.ImageCount++
		}
		data.Groups = append(data.Groups, section)
	}
	return data
}

// RenderHTML renders the contact sheet template
func (s *SheetService) RenderHTML(data SheetData) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// detectChromePath returns the configured Chrome path if it exists, then checks
// common installation paths
func (s *SheetService) detectChromePath() string {
	if s.chromePath != "" {
		if _, err := os.Stat(s.chromePath); err == nil {
			return s.chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// GeneratePDF prints the render endpoint of role with headless Chrome
func (s *SheetService) GeneratePDF(ctx context.Context, role string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := s.detectChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	} else {
		s.log.Warnf("⚠️  Chrome not found, letting chromedp auto-detect")
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	renderURL := fmt.Sprintf("%s/admin/workspace/%s/sheet/render", s.baseURL, role)

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		// Wait for images to load
		chromedp.Evaluate(`
			Promise.all(Array.from(document.querySelectorAll('img')).map(img => new Promise(resolve => {
				if (img.complete) { resolve(); return; }
				const timeout = setTimeout(resolve, 5000);
				img.onload = img.onerror = () => { clearTimeout(timeout); resolve(); };
			})));
		`, nil, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 = 8.27" x 11.69"
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	s.log.Infof("✓ Contact sheet generated for %s (%d bytes)", role, len(pdfBuf))
	return pdfBuf, nil
}
