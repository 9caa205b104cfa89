package loader

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"docassist/internal/domain/docmodel"
)

func sentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(fmt.Sprintf("This is sentence number %d of the test corpus. ", i))
	}
	return strings.TrimSuffix(b.String(), " ")
}

func TestSplitText_ShortTextIsSingleChunk(t *testing.T) {
	text := "short enough"
	chunks := splitText(text, 500, 50)
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("got %v, want the input unchanged", chunks)
	}
}

func TestSplitText_RespectsLimit(t *testing.T) {
	text := sentences(40)
	for _, overlap := range []int{0, 20, 50} {
		chunks := splitText(text, 100, overlap)
		if len(chunks) < 2 {
			t.Fatalf("overlap %d: expected multiple chunks, got %d", overlap, len(chunks))
		}
		for i, c := range chunks {
			if len(c) > 100 {
				t.Errorf("overlap %d: chunk %d has %d characters, limit is 100", overlap, i, len(c))
			}
			if c == "" {
				t.Errorf("overlap %d: chunk %d is empty", overlap, i)
			}
		}
	}
}

func TestSplitText_LosslessCoverage(t *testing.T) {
	text := sentences(40)
	overlap := 20
	chunks := splitText(text, 100, overlap)

	rebuilt := chunks[0]
	for _, c := range chunks[1:] {
		if len(c) > overlap && strings.HasSuffix(rebuilt, c[:overlap]) {
			rebuilt += c[overlap:]
		} else {
			rebuilt += c
		}
	}
	if rebuilt != text {
		t.Fatalf("chunks do not reproduce the input\n got: %q\nwant: %q", rebuilt, text)
	}
}

func TestSplitText_CarriesOverlap(t *testing.T) {
	text := sentences(40)
	overlap := 20
	chunks := splitText(text, 100, overlap)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-overlap:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with the previous chunk's tail\nprev tail: %q\nchunk: %q", i, tail, chunks[i])
		}
	}
}

func TestSplitText_HardCutUnbreakableRun(t *testing.T) {
	text := strings.Repeat("a", 1200)
	chunks := splitText(text, 500, 50)

	total := 0
	for i, c := range chunks {
		if len(c) > 500 {
			t.Errorf("chunk %d has %d characters, limit is 500", i, len(c))
		}
		total += len(c)
	}
	if total < len(text) {
		t.Errorf("chunks cover %d characters, input has %d", total, len(text))
	}
}

func TestSplitText_HardCutKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("語", 400)
	chunks := splitText(text, 100, 0)

	var rebuilt strings.Builder
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d splits a rune mid-sequence: %q", i, c)
		}
		if len(c) > 100 {
			t.Errorf("chunk %d has %d bytes, limit is 100", i, len(c))
		}
		rebuilt.WriteString(c)
	}
	if rebuilt.String() != text {
		t.Error("chunks do not reproduce the input")
	}
}

func TestChunk_MetadataAndOrder(t *testing.T) {
	now := time.Now()
	docs := []docmodel.Document{
		{
			SourceType: docmodel.SourcePDF,
			FileName:   "guide.pdf",
			Page:       3,
			Text:       sentences(40),
			IngestedAt: now,
		},
	}

	passages := Chunk(docs, 100, 20)
	if len(passages) < 2 {
		t.Fatalf("expected multiple passages, got %d", len(passages))
	}

	ids := make(map[string]struct{})
	for i, p := range passages {
		if p.FileName != "guide.pdf" || p.SourceType != docmodel.SourcePDF || p.Page != 3 {
			t.Errorf("passage %d lost its document metadata: %+v", i, p)
		}
		if p.Order != i {
			t.Errorf("passage %d has order %d", i, p.Order)
		}
		if !p.IngestedAt.Equal(now) {
			t.Errorf("passage %d has wrong timestamp", i)
		}
		if p.ID == "" {
			t.Errorf("passage %d has no id", i)
		}
		ids[p.ID] = struct{}{}
	}
	if len(ids) != len(passages) {
		t.Error("passage ids are not unique")
	}
}

func TestChunk_SkipsEmptyDocuments(t *testing.T) {
	docs := []docmodel.Document{
		{SourceType: docmodel.SourceTXT, FileName: "blank.txt", Text: "   \n\t "},
		{SourceType: docmodel.SourceTXT, FileName: "real.txt", Text: "some actual content"},
	}

	passages := Chunk(docs, 500, 50)
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].FileName != "real.txt" {
		t.Errorf("wrong document survived: %q", passages[0].FileName)
	}
}
