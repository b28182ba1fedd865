package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

var allMarkers = []string{
	MarkerToolCall,
	MarkerToolResult,
	MarkerTwitterPreview,
	MarkerLinkedInPreview,
}

var markerReplacer = strings.NewReplacer(
	MarkerToolCall, "",
	MarkerToolResult, "",
	MarkerTwitterPreview, "",
	MarkerLinkedInPreview, "",
)

// Encoder multiplexes free text and structured events into one byte
// stream. Every write is flushed immediately when the underlying
// writer supports it, so chunks reach the client as they are produced.
type Encoder struct {
	w       io.Writer
	flusher interface{ Flush() }

	// Text tail that could still grow into a marker token, held back
	// until the next write resolves it.
	pending string
}

// NewEncoder creates an Encoder over w.
func NewEncoder(w io.Writer) *Encoder {
	enc := &Encoder{w: w}
	if f, ok := w.(interface{ Flush() }); ok {
		enc.flusher = f
	}
	return enc
}

// WriteText emits a free-text fragment verbatim. Marker tokens are
// stripped so generated prose can never open or close a segment, even
// when a token arrives split across fragments.
func (e *Encoder) WriteText(text string) error {
	text = e.pending + text
	e.pending = ""
	if text == "" {
		return nil
	}
	if strings.Contains(text, "__") {
		text = markerReplacer.Replace(text)
	}
	if hold := markerPrefixLen(text); hold > 0 {
		e.pending = text[len(text)-hold:]
		text = text[:len(text)-hold]
	}
	if text == "" {
		return nil
	}
	return e.write(text)
}

// Close flushes any held-back text tail. The stream owner calls it
// once no more fragments can arrive.
func (e *Encoder) Close() error {
	if e.pending == "" {
		return nil
	}
	tail := e.pending
	e.pending = ""
	return e.write(tail)
}

// WriteToolCall emits a tool-call segment.
func (e *Encoder) WriteToolCall(ev ToolCallEvent) error {
	return e.writeSegment(MarkerToolCall, ev)
}

// WriteToolResult emits a tool-result segment.
func (e *Encoder) WriteToolResult(ev ToolResultEvent) error {
	return e.writeSegment(MarkerToolResult, ev)
}

// WritePreviewCard emits a preview-card segment under the given marker.
func (e *Encoder) WritePreviewCard(marker string, card interface{}) error {
	return e.writeSegment(marker, card)
}

func (e *Encoder) writeSegment(marker string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s segment: %w", marker, err)
	}
	// A segment boundary resolves any held-back tail; it goes out as
	// plain text since it never completed a token.
	if err := e.Close(); err != nil {
		return err
	}
	// The payload must not contain a marker token, or the closing
	// delimiter would be ambiguous.
	body := markerReplacer.Replace(string(data))
	return e.write("\n\n" + marker + body + marker + "\n\n")
}

func (e *Encoder) write(s string) error {
	if _, err := io.WriteString(e.w, s); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}

// markerPrefixLen reports the length of the longest text suffix that
// is a proper prefix of some marker token and so could complete into
// one with later fragments.
func markerPrefixLen(text string) int {
	longest := len(MarkerLinkedInPreview) - 1
	if len(text) < longest {
		longest = len(text)
	}
	for n := longest; n > 0; n-- {
		suffix := text[len(text)-n:]
		for _, marker := range allMarkers {
			if strings.HasPrefix(marker, suffix) {
				return n
			}
		}
	}
	return 0
}
