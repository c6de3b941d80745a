// internal/rag/chunker.go
package rag

import "strings"

// paragraphSeparator delimits paragraphs; chunks rejoin with it losslessly.
const paragraphSeparator = "\n\n"

// SplitParagraphs splits text into chunks of at most maxSize bytes, breaking
// only at paragraph boundaries. Paragraphs are accumulated greedily: a
// paragraph that would push the buffer past maxSize starts a new chunk. A
// single paragraph longer than maxSize is emitted whole rather than cut
// mid-paragraph, so maxSize is a target, not a hard guarantee.
func SplitParagraphs(text string, maxSize int) []string {
	if maxSize <= 0 || len(text) <= maxSize {
		return []string{text}
	}

	paragraphs := strings.Split(text, paragraphSeparator)

	var chunks []string
	var buf strings.Builder
	buffered := 0
	for _, para := range paragraphs {
		if buffered > 0 && buf.Len()+len(paragraphSeparator)+len(para) > maxSize {
			chunks = append(chunks, buf.String())
			buf.Reset()
			buffered = 0
		}
		if buffered > 0 {
			buf.WriteString(paragraphSeparator)
		}
		buf.WriteString(para)
		buffered++
	}
	if buffered > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}
