package stream

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	toolCallPattern   = segmentPattern(MarkerToolCall)
	toolResultPattern = segmentPattern(MarkerToolResult)
	previewPatterns   = map[string]*regexp.Regexp{
		MarkerTwitterPreview:  segmentPattern(MarkerTwitterPreview),
		MarkerLinkedInPreview: segmentPattern(MarkerLinkedInPreview),
	}
	anyMarkerPattern = regexp.MustCompile(
		MarkerToolCall + `|` + MarkerToolResult + `|` +
			MarkerTwitterPreview + `|` + MarkerLinkedInPreview)
	blankRunPattern = regexp.MustCompile(`\n{3,}`)
)

func segmentPattern(marker string) *regexp.Regexp {
	return regexp.MustCompile(`(?s)` + marker + `(.*?)` + marker)
}

// Decoder reconstructs events from a chunked byte stream. Chunks may
// split anywhere, including inside a marker; the decoder re-scans the
// whole accumulated buffer on every feed and only acts on segments
// whose opening and closing markers are both present. Events are
// deduplicated by call id, so rescanning never double-counts.
type Decoder struct {
	buf strings.Builder
	log *zap.Logger

	seenCalls   map[string]bool
	seenResults map[string]bool
	seenCards   map[string]bool

	toolCalls   []ToolCallEvent
	toolResults []ToolResultEvent
	cards       []PreviewCardEvent
}

// NewDecoder creates a Decoder. The logger may be nil.
func NewDecoder(log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{
		log:         log,
		seenCalls:   make(map[string]bool),
		seenResults: make(map[string]bool),
		seenCards:   make(map[string]bool),
	}
}

// Feed appends a chunk and extracts any newly completed segments.
func (d *Decoder) Feed(chunk string) {
	if chunk == "" {
		return
	}
	d.buf.WriteString(chunk)
	d.scan()
}

func (d *Decoder) scan() {
	buf := d.buf.String()

	for _, m := range toolCallPattern.FindAllStringSubmatch(buf, -1) {
		var ev ToolCallEvent
		if err := json.Unmarshal([]byte(m[1]), &ev); err != nil {
			d.log.Warn("skipping malformed tool-call segment", zap.Error(err))
			continue
		}
		if ev.ToolCallID == "" || d.seenCalls[ev.ToolCallID] {
			continue
		}
		d.seenCalls[ev.ToolCallID] = true
		d.toolCalls = append(d.toolCalls, ev)
	}

	for _, m := range toolResultPattern.FindAllStringSubmatch(buf, -1) {
		var ev ToolResultEvent
		if err := json.Unmarshal([]byte(m[1]), &ev); err != nil {
			d.log.Warn("skipping malformed tool-result segment", zap.Error(err))
			continue
		}
		if ev.ToolCallID == "" || d.seenResults[ev.ToolCallID] {
			continue
		}
		d.seenResults[ev.ToolCallID] = true
		d.toolResults = append(d.toolResults, ev)
	}

	for marker, pattern := range previewPatterns {
		for _, m := range pattern.FindAllStringSubmatch(buf, -1) {
			if !json.Valid([]byte(m[1])) {
				d.log.Warn("skipping malformed preview segment", zap.String("marker", marker))
				continue
			}
			key := marker + m[1]
			if d.seenCards[key] {
				continue
			}
			d.seenCards[key] = true
			d.cards = append(d.cards, PreviewCardEvent{
				Marker:  marker,
				Payload: json.RawMessage(m[1]),
			})
		}
	}
}

// CleanText returns the visible text: the buffer with every completed
// segment removed. A trailing segment that has opened but not yet
// closed is hidden too, so raw markers never leak into rendered text.
func (d *Decoder) CleanText() string {
	text := d.buf.String()
	text = toolCallPattern.ReplaceAllString(text, "")
	text = toolResultPattern.ReplaceAllString(text, "")
	for _, pattern := range previewPatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	if loc := anyMarkerPattern.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	// Removed segments leave stacked blank lines behind.
	text = blankRunPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ToolCalls returns extracted tool-call events in arrival order.
func (d *Decoder) ToolCalls() []ToolCallEvent {
	return d.toolCalls
}

// ToolResults returns extracted tool-result events in arrival order.
func (d *Decoder) ToolResults() []ToolResultEvent {
	return d.toolResults
}

// Cards returns extracted preview-card events in arrival order.
func (d *Decoder) Cards() []PreviewCardEvent {
	return d.cards
}
