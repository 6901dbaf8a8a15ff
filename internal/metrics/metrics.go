package metrics

import (
	"sync"
	"time"
)

// Metrics tracks pipeline counters for the monitoring endpoints.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ProbesAttempted      int64
	ProbesFailed         int64
	FallbacksToTextual   int64
	ArticlesNormalized   int64
	CandidatesCollected  int64
	DuplicatesFiltered   int64
	FilesPublished       int64
	TelegramMessagesSent int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementProbesAttempted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProbesAttempted++
}

func (m *Metrics) IncrementProbesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProbesFailed++
}

func (m *Metrics) IncrementFallbacksToTextual() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbacksToTextual++
}

func (m *Metrics) AddArticlesNormalized(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesNormalized += int64(n)
}

func (m *Metrics) AddCandidatesCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesCollected += int64(n)
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementFilesPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FilesPublished++
}

func (m *Metrics) IncrementTelegramMessagesSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TelegramMessagesSent++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"probes_attempted":           m.ProbesAttempted,
		"probes_failed":              m.ProbesFailed,
		"fallbacks_to_textual":       m.FallbacksToTextual,
		"articles_normalized":        m.ArticlesNormalized,
		"candidates_collected":       m.CandidatesCollected,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"files_published":            m.FilesPublished,
		"telegram_messages_sent":     m.TelegramMessagesSent,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
