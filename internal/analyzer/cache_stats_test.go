package analyzer

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/penwyp/go-glider-monitor/internal/data/cache"
	"github.com/stretchr/testify/assert"
)

func TestCacheStatsCounters(t *testing.T) {
	cs := NewCacheStats()

	for i := 0; i < 4; i++ {
		cs.IncrementTotal()
	}
	cs.IncrementHit()
	cs.IncrementMiss("a.igc", cache.MissReasonNotFound)
	cs.IncrementMiss("b.igc", cache.MissReasonConfig)
	cs.IncrementFailure("c.igc", errors.New("line 7: malformed record"))

	total, hits, misses, failures, hitRate := cs.GetStats()
	assert.Equal(t, int64(4), total)
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
	assert.Equal(t, int64(1), failures)
	assert.InDelta(t, 25.0, hitRate, 1e-9)

	assert.Equal(t, map[cache.CacheMissReason]int{
		cache.MissReasonNotFound: 1,
		cache.MissReasonConfig:   1,
	}, cs.MissReasonCounts())

	failed := cs.Failures()
	assert.Len(t, failed, 1)
	assert.Equal(t, "c.igc", failed[0].FilePath)
	assert.EqualError(t, failed[0].Err, "line 7: malformed record")
}

func TestCacheStatsHitRateWithoutFiles(t *testing.T) {
	_, _, _, _, hitRate := NewCacheStats().GetStats()
	assert.Equal(t, 0.0, hitRate)
}

func TestCacheStatsConcurrentAccess(t *testing.T) {
	cs := NewCacheStats()
	const workers, perWorker = 8, 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				cs.IncrementTotal()
				switch i % 3 {
				case 0:
					cs.IncrementHit()
				case 1:
					cs.IncrementMiss(fmt.Sprintf("%d-%d.igc", w, i), cache.MissReasonSize)
				default:
					cs.IncrementFailure(fmt.Sprintf("%d-%d.igc", w, i), errors.New("bad"))
				}
			}
		}(w)
	}
	wg.Wait()

	total, hits, misses, failures, _ := cs.GetStats()
	assert.Equal(t, int64(workers*perWorker), total)
	assert.Equal(t, total, hits+misses+failures)
	assert.Equal(t, int(misses), cs.MissReasonCounts()[cache.MissReasonSize])
	assert.Len(t, cs.Failures(), int(failures))
}

func TestCacheStatsPrinting(t *testing.T) {
	cs := NewCacheStats()
	cs.IncrementTotal()
	cs.IncrementMiss("a.igc", cache.MissReasonInode)
	cs.IncrementFailure("b.igc", errors.New("bad"))

	assert.NotPanics(t, func() {
		cs.PrintProgress(1)
		cs.PrintPeriodicStats()
		cs.PrintFinalStats()
	})
}
