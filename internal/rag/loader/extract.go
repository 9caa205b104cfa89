package loader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"docassist/internal/config"
	"docassist/internal/domain/docmodel"
)

var urlClient = &http.Client{
	Timeout: config.URLFetchTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
	},
}

// loadPDF extracts text page by page: one Document per page.
func loadPDF(source docmodel.Source) ([]docmodel.Document, error) {
	f, err := pdf.Open(source.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	name := displayName(source)
	loadedAt := stamp()

	var docs []docmodel.Document
	numPages := f.NumPage()
	logger.Debug("extracting pdf", "file", source.Location, "pages", numPages)

	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// a single broken page should not sink the rest of the file
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}

		docs = append(docs, docmodel.Document{
			SourceType: docmodel.SourcePDF,
			FileName:   name,
			Page:       i,
			Text:       content,
			IngestedAt: loadedAt,
		})
	}

	if len(docs) == 0 {
		return nil, errors.New("no extractable text in pdf")
	}
	return docs, nil
}

// loadText reads a plaintext, .docx, .rtf or .odt file as one Document.
func loadText(source docmodel.Source) (docmodel.Document, error) {
	text, err := cat.File(source.Location)
	if err != nil {
		return docmodel.Document{}, fmt.Errorf("failed to extract file content: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return docmodel.Document{}, errors.New("file contains no text")
	}

	return docmodel.Document{
		SourceType: docmodel.SourceTXT,
		FileName:   displayName(source),
		Text:       text,
		IngestedAt: stamp(),
	}, nil
}

// loadURL fetches a web page and strips it down to its visible text.
func loadURL(ctx context.Context, source docmodel.Source) (docmodel.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.Location, nil)
	if err != nil {
		return docmodel.Document{}, fmt.Errorf("bad url: %w", err)
	}

	resp, err := urlClient.Do(req)
	if err != nil {
		return docmodel.Document{}, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return docmodel.Document{}, fmt.Errorf("fetch failed: status %d", resp.StatusCode)
	}

	page, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return docmodel.Document{}, fmt.Errorf("parse failed: %w", err)
	}

	page.Find("script, style, noscript, iframe").Remove()
	text := normalizeWhitespace(page.Find("body").Text())
	if text == "" {
		return docmodel.Document{}, errors.New("page contains no text")
	}

	return docmodel.Document{
		SourceType: docmodel.SourceURL,
		SourceURL:  source.Location,
		Text:       text,
		IngestedAt: stamp(),
	}, nil
}

// protectExtract guards the pdf library against pages it hangs on.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("page extraction timeout")
	}
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
