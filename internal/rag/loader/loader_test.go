package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"docassist/internal/domain/docmodel"
)

func writeTempTxt(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoad_TextFile(t *testing.T) {
	path := writeTempTxt(t, "notes.txt", "transformers use attention.\nthat is the whole trick.")

	docs, err := Load(context.Background(), []docmodel.Source{
		{Type: docmodel.SourceTXT, Location: path},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].FileName != "notes.txt" {
		t.Errorf("FileName got %q, want notes.txt", docs[0].FileName)
	}
	if docs[0].SourceType != docmodel.SourceTXT {
		t.Errorf("SourceType got %q", docs[0].SourceType)
	}
	if docs[0].Text == "" {
		t.Error("document text is empty")
	}
	if docs[0].Origin() != "notes.txt" {
		t.Errorf("Origin got %q, want notes.txt", docs[0].Origin())
	}
}

func TestLoad_DisplayNameOverridesFileName(t *testing.T) {
	path := writeTempTxt(t, "x9f3a.txt", "content")

	docs, err := Load(context.Background(), []docmodel.Source{
		{Type: docmodel.SourceTXT, Location: path, DisplayName: "quarterly-report.txt"},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if docs[0].FileName != "quarterly-report.txt" {
		t.Errorf("FileName got %q, want the display name", docs[0].FileName)
	}
}

func TestLoad_EmptyTextFileFails(t *testing.T) {
	path := writeTempTxt(t, "empty.txt", "   \n ")

	if _, err := Load(context.Background(), []docmodel.Source{
		{Type: docmodel.SourceTXT, Location: path},
	}); err == nil {
		t.Fatal("expected an error for a file with no text")
	}
}

func TestLoad_UnknownTypeIsSkipped(t *testing.T) {
	path := writeTempTxt(t, "keep.txt", "kept content")

	docs, err := Load(context.Background(), []docmodel.Source{
		{Type: "spreadsheet", Location: "numbers.xlsx"},
		{Type: docmodel.SourceTXT, Location: path},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(docs) != 1 || docs[0].FileName != "keep.txt" {
		t.Fatalf("expected only the known source to load, got %+v", docs)
	}
}

func TestLoad_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><style>body{}</style></head>
			<body><script>var hidden = 1;</script><h1>Title</h1>
			<p>Visible   paragraph.</p></body></html>`))
	}))
	defer srv.Close()

	docs, err := Load(context.Background(), []docmodel.Source{
		{Type: docmodel.SourceURL, Location: srv.URL},
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Text != "Title Visible paragraph." {
		t.Errorf("extracted text got %q", docs[0].Text)
	}
	if docs[0].SourceURL != srv.URL {
		t.Errorf("SourceURL got %q, want %q", docs[0].SourceURL, srv.URL)
	}
	if docs[0].Origin() != srv.URL {
		t.Errorf("Origin got %q, want the url", docs[0].Origin())
	}
}

func TestLoad_URLNon200Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Load(context.Background(), []docmodel.Source{
		{Type: docmodel.SourceURL, Location: srv.URL},
	}); err == nil {
		t.Fatal("expected an error for a 404 page")
	}
}

func TestInferSource(t *testing.T) {
	tests := []struct {
		location string
		wantType docmodel.SourceType
		wantErr  bool
	}{
		{"https://example.com/article", docmodel.SourceURL, false},
		{"http://example.com", docmodel.SourceURL, false},
		{"http://x", docmodel.SourceURL, false},
		{"data/learning.pdf", docmodel.SourcePDF, false},
		{"data/transformers.txt", docmodel.SourceTXT, false},
		{"report.docx", docmodel.SourceTXT, false},
		{"archive.zip", "", true},
		{"plainname", "", true},
	}

	for _, tt := range tests {
		source, err := InferSource(tt.location)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%q: expected an error", tt.location)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.location, err)
			continue
		}
		if source.Type != tt.wantType {
			t.Errorf("%q: type got %q, want %q", tt.location, source.Type, tt.wantType)
		}
		if source.Location != tt.location {
			t.Errorf("%q: location got %q", tt.location, source.Location)
		}
	}
}
