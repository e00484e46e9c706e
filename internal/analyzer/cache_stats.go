package analyzer

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/penwyp/go-glider-monitor/internal/data/cache"
	"github.com/penwyp/go-glider-monitor/internal/util"
)

// CacheStats counts how the logs of one run were served
type CacheStats struct {
	totalFiles  int64
	cacheHits   int64
	cacheMisses int64
	failures    int64
	mu          sync.Mutex
	missDetails []MissDetail
	failed      []FailureDetail
}

// MissDetail records why a log had to be re-analysed
type MissDetail struct {
	FilePath string
	Reason   cache.CacheMissReason
}

// FailureDetail records a log that could not be analysed
type FailureDetail struct {
	FilePath string
	Err      error
}

// NewCacheStats creates a new CacheStats instance
func NewCacheStats() *CacheStats {
	return &CacheStats{}
}

// IncrementTotal increases the total file count
func (cs *CacheStats) IncrementTotal() {
	atomic.AddInt64(&cs.totalFiles, 1)
}

// IncrementHit increases the cache hit count
func (cs *CacheStats) IncrementHit() {
	atomic.AddInt64(&cs.cacheHits, 1)
}

// IncrementMiss increases the cache miss count and records the reason
func (cs *CacheStats) IncrementMiss(filePath string, reason cache.CacheMissReason) {
	atomic.AddInt64(&cs.cacheMisses, 1)

	cs.mu.Lock()
	cs.missDetails = append(cs.missDetails, MissDetail{FilePath: filePath, Reason: reason})
	cs.mu.Unlock()
}

// IncrementFailure increases the failure count and records the error
func (cs *CacheStats) IncrementFailure(filePath string, err error) {
	atomic.AddInt64(&cs.failures, 1)

	cs.mu.Lock()
	cs.failed = append(cs.failed, FailureDetail{FilePath: filePath, Err: err})
	cs.mu.Unlock()
}

// GetStats returns the counters and the hit rate in percent
func (cs *CacheStats) GetStats() (total, hits, misses, failures int64, hitRate float64) {
	total = atomic.LoadInt64(&cs.totalFiles)
	hits = atomic.LoadInt64(&cs.cacheHits)
	misses = atomic.LoadInt64(&cs.cacheMisses)
	failures = atomic.LoadInt64(&cs.failures)

	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return
}

// Failures returns the recorded failures
func (cs *CacheStats) Failures() []FailureDetail {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	out := make([]FailureDetail, len(cs.failed))
	copy(out, cs.failed)
	return out
}

// MissReasonCounts tallies misses per reason
func (cs *CacheStats) MissReasonCounts() map[cache.CacheMissReason]int {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	counts := make(map[cache.CacheMissReason]int)
	for _, detail := range cs.missDetails {
		counts[detail.Reason]++
	}
	return counts
}

// PrintProgress logs the processing progress and cache hit rate
func (cs *CacheStats) PrintProgress(processed int64) {
	total, hits, misses, failures, hitRate := cs.GetStats()

	util.LogInfof("Analysis progress: processed %d/%d files, cache hit rate: %.1f%% (%d hits/%d misses/%d failures)",
		processed, total, hitRate, hits, misses, failures)
}

// PrintPeriodicStats logs the counters and every miss at debug level
func (cs *CacheStats) PrintPeriodicStats() {
	total, hits, misses, failures, hitRate := cs.GetStats()

	util.LogDebugf("Cache stats: total files %d, hits %d, misses %d, failures %d, hit rate %.1f%%",
		total, hits, misses, failures, hitRate)

	if misses > 0 {
		cs.mu.Lock()
		recentMisses := make([]MissDetail, len(cs.missDetails))
		copy(recentMisses, cs.missDetails)
		cs.mu.Unlock()

		util.LogDebug("Files missed in cache:")
		for _, detail := range recentMisses {
			util.LogDebugf("  %s (%s)", detail.FilePath, detail.Reason)
		}
	}
}

// PrintFinalStats logs the totals, the miss reasons and every failure
func (cs *CacheStats) PrintFinalStats() {
	total, hits, misses, failures, hitRate := cs.GetStats()

	util.LogInfof("Cache statistics complete: total files %d, hit rate %.1f%% (%d hits/%d misses/%d failures)",
		total, hitRate, hits, misses, failures)

	if misses > 0 {
		counts := cs.MissReasonCounts()
		reasons := make([]cache.CacheMissReason, 0, len(counts))
		for reason := range counts {
			reasons = append(reasons, reason)
		}
		sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })

		util.LogInfo("Cache miss reason summary:")
		for _, reason := range reasons {
			util.LogInfof("  %s: %d files", reason, counts[reason])
		}
	}

	for _, f := range cs.Failures() {
		util.LogWarnf("  skipped %s: %v", f.FilePath, f.Err)
	}
}
