package loader

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"docassist/internal/domain/docmodel"
)

// Separators ordered from "best" to "worst" for semantic meaning. The empty
// separator is the hard-cut fallback for unbreakable runs.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Chunk splits every Document into passages of at most chunkSize characters,
// carrying chunkOverlap trailing characters into the next passage. Passages
// inherit the parent Document's metadata unchanged.
func Chunk(documents []docmodel.Document, chunkSize int, chunkOverlap int) []docmodel.Passage {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}

	var passages []docmodel.Passage
	for _, doc := range documents {
		if strings.TrimSpace(doc.Text) == "" {
			continue
		}
		for i, text := range splitText(doc.Text, chunkSize, chunkOverlap) {
			passages = append(passages, docmodel.Passage{
				ID:         uuid.New().String(),
				Text:       text,
				SourceType: doc.SourceType,
				FileName:   doc.FileName,
				SourceURL:  doc.SourceURL,
				Page:       doc.Page,
				Order:      i,
				IngestedAt: doc.IngestedAt,
			})
		}
	}
	return passages
}

// splitText breaks text into chunks of at most limit characters with overlap
// characters of trailing context repeated at the start of the next chunk.
// Fragmentation keeps separators attached, so the concatenation of all
// chunks minus the repeated overlaps reproduces the input exactly.
func splitText(text string, limit int, overlap int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	return mergeFragments(fragment(text, limit, separators), limit, overlap)
}

// fragment recursively splits text into pieces no longer than limit, trying
// each separator in order and keeping the separator on the piece it ends.
func fragment(text string, limit int, seps []string) []string {
	if len(text) <= limit {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		return hardCut(text, limit)
	}

	parts := strings.SplitAfter(text, seps[0])
	var out []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if len(part) > limit {
			out = append(out, fragment(part, limit, seps[1:])...)
		} else {
			out = append(out, part)
		}
	}
	return out
}

// hardCut slices at most limit bytes per piece, backing up to a rune
// boundary so multi-byte characters never get split across pieces.
func hardCut(text string, limit int) []string {
	var out []string
	for len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// mergeFragments greedily packs fragments into chunks of at most limit
// characters. When a chunk fills up, its last overlap characters seed the
// next chunk so meaning split at the boundary survives in both.
func mergeFragments(frags []string, limit int, overlap int) []string {
	var chunks []string
	var current strings.Builder
	carried := 0 // length of the overlap prefix in current

	flush := func(next string) {
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()

		if overlap > 0 && len(chunk) > overlap && overlap+len(next) <= limit {
			current.WriteString(chunk[len(chunk)-overlap:])
			carried = overlap
		} else {
			carried = 0
		}
	}

	for _, frag := range frags {
		if current.Len() > carried && current.Len()+len(frag) > limit {
			flush(frag)
		}
		current.WriteString(frag)
	}

	if current.Len() > carried {
		chunks = append(chunks, current.String())
	}
	if len(chunks) == 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
