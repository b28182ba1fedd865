package stream

import (
	"strings"
	"time"
)

// Average characters per token. A deliberate estimate: the stream
// carries no provider token accounting, so the decoder approximates
// from visible character count.
const charsPerToken = 3.5

// Metrics derives timing figures from the decode progress.
type Metrics struct {
	start      time.Time
	firstToken time.Time
	now        func() time.Time
}

// NewMetrics starts the clock for one request.
func NewMetrics() *Metrics {
	m := &Metrics{now: time.Now}
	m.start = m.now()
	return m
}

// Observe records a received chunk. The first chunk containing
// non-whitespace fixes the time-to-first-token.
func (m *Metrics) Observe(chunk string) {
	if m.firstToken.IsZero() && strings.TrimSpace(chunk) != "" {
		m.firstToken = m.now()
	}
}

// Snapshot is the derived metrics at one point in time.
type Snapshot struct {
	Elapsed          time.Duration
	TimeToFirstToken time.Duration
	TokenEstimate    int
	TokensPerSecond  float64
}

// Compute recalculates the snapshot for the given visible text.
func (m *Metrics) Compute(visibleText string) Snapshot {
	s := Snapshot{
		Elapsed:       m.now().Sub(m.start),
		TokenEstimate: int(float64(len(visibleText)) / charsPerToken),
	}
	if !m.firstToken.IsZero() {
		s.TimeToFirstToken = m.firstToken.Sub(m.start)
	}
	// Guard against a near-zero denominator right after the first chunk.
	if elapsed := s.Elapsed.Seconds(); elapsed > 0.1 {
		s.TokensPerSecond = float64(s.TokenEstimate) / elapsed
	}
	return s
}
