package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"docassist/internal/domain/docmodel"
	"docassist/pkg/logger_i"
)

var logger *logger_i.Logger

func init() {
	logger = logger_i.NewLogger("Loader")
}

// Load normalizes every source into Documents with provenance metadata.
// Unknown source types are skipped with a warning; an extraction failure on a
// known type fails the batch, since an empty document with a registered
// origin would poison dedup bookkeeping.
func Load(ctx context.Context, sources []docmodel.Source) ([]docmodel.Document, error) {
	var documents []docmodel.Document

	for _, source := range sources {
		switch source.Type {
		case docmodel.SourcePDF:
			docs, err := loadPDF(source)
			if err != nil {
				return nil, fmt.Errorf("loading pdf %q: %w", source.Location, err)
			}
			documents = append(documents, docs...)

		case docmodel.SourceTXT:
			doc, err := loadText(source)
			if err != nil {
				return nil, fmt.Errorf("loading text %q: %w", source.Location, err)
			}
			documents = append(documents, doc)

		case docmodel.SourceURL:
			doc, err := loadURL(ctx, source)
			if err != nil {
				return nil, fmt.Errorf("loading url %q: %w", source.Location, err)
			}
			documents = append(documents, doc)

		default:
			logger.Warn("Unknown source type, skipping", "type", source.Type, "location", source.Location)
		}
	}

	return documents, nil
}

// InferSource builds a Source from a bare location, deciding the type from
// the URL scheme or file extension. Used by the evaluation driver.
func InferSource(location string) (docmodel.Source, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return docmodel.Source{Type: docmodel.SourceURL, Location: location}, nil
	}
	switch filepath.Ext(location) {
	case ".pdf":
		return docmodel.Source{Type: docmodel.SourcePDF, Location: location}, nil
	case ".txt", ".docx", ".rtf", ".odt", ".md":
		return docmodel.Source{Type: docmodel.SourceTXT, Location: location}, nil
	}
	return docmodel.Source{}, fmt.Errorf("cannot infer source type of %q", location)
}

func displayName(source docmodel.Source) string {
	if source.DisplayName != "" {
		return source.DisplayName
	}
	return filepath.Base(source.Location)
}

func stamp() time.Time {
	return time.Now()
}
