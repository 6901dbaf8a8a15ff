// Package ratelimit caps daily AI API usage so a runaway schedule cannot
// burn through free-tier quotas.
package ratelimit

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// AIRateLimiter manages rate limiting across the AI services. Counters reset
// 24 hours after construction and then on a rolling daily window.
type AIRateLimiter struct {
	mu          sync.Mutex
	geminiCount int
	openaiCount int
	totalCount  int
	maxGemini   int
	maxOpenAI   int
	maxTotal    int
	resetTime   time.Time
	cacheHits   int
	cacheMisses int
}

// NewAIRateLimiter creates a rate limiter. Zero limits mean unlimited.
func NewAIRateLimiter(maxGemini, maxOpenAI, maxTotal int) *AIRateLimiter {
	return &AIRateLimiter{
		maxGemini: maxGemini,
		maxOpenAI: maxOpenAI,
		maxTotal:  maxTotal,
		resetTime: time.Now().Add(24 * time.Hour),
	}
}

// CanUseGemini checks if a Gemini request is still within budget.
func (rl *AIRateLimiter) CanUseGemini() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxGemini > 0 && rl.geminiCount >= rl.maxGemini {
		log.Printf("gemini rate limit reached (%d/%d)", rl.geminiCount, rl.maxGemini)
		return false
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		log.Printf("total AI rate limit reached (%d/%d)", rl.totalCount, rl.maxTotal)
		return false
	}
	return true
}

// CanUseOpenAI checks if an OpenAI request is still within budget.
func (rl *AIRateLimiter) CanUseOpenAI() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxOpenAI > 0 && rl.openaiCount >= rl.maxOpenAI {
		log.Printf("openai rate limit reached (%d/%d)", rl.openaiCount, rl.maxOpenAI)
		return false
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		log.Printf("total AI rate limit reached (%d/%d)", rl.totalCount, rl.maxTotal)
		return false
	}
	return true
}

// UseGemini increments the Gemini counter.
func (rl *AIRateLimiter) UseGemini() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxGemini > 0 && rl.geminiCount >= rl.maxGemini {
		return fmt.Errorf("gemini rate limit exceeded")
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded")
	}

	rl.geminiCount++
	rl.totalCount++
	rl.cacheMisses++
	return nil
}

// UseOpenAI increments the OpenAI counter.
func (rl *AIRateLimiter) UseOpenAI() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxOpenAI > 0 && rl.openaiCount >= rl.maxOpenAI {
		return fmt.Errorf("openai rate limit exceeded")
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded")
	}

	rl.openaiCount++
	rl.totalCount++
	rl.cacheMisses++
	return nil
}

// RecordCacheHit records a summary served from cache instead of an API call.
func (rl *AIRateLimiter) RecordCacheHit() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cacheHits++
}

func (rl *AIRateLimiter) cacheHitRate() float64 {
	total := rl.cacheHits + rl.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(rl.cacheHits) / float64(total) * 100
}

// GetStats returns current rate limiter statistics.
func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"gemini_used":    rl.geminiCount,
		"gemini_limit":   rl.maxGemini,
		"openai_used":    rl.openaiCount,
		"openai_limit":   rl.maxOpenAI,
		"total_used":     rl.totalCount,
		"total_limit":    rl.maxTotal,
		"cache_hits":     rl.cacheHits,
		"cache_misses":   rl.cacheMisses,
		"cache_hit_rate": rl.cacheHitRate(),
		"reset_time":     rl.resetTime,
	}
}

func (rl *AIRateLimiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		log.Printf("resetting AI rate limiter counters")
		rl.geminiCount = 0
		rl.openaiCount = 0
		rl.totalCount = 0
		rl.cacheHits = 0
		rl.cacheMisses = 0
		rl.resetTime = time.Now().Add(24 * time.Hour)
	}
}
