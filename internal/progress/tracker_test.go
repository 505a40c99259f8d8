package progress

import (
	"sync"
	"testing"
)

func TestQuietTrackerIsNoOp(t *testing.T) {
	tr := NewTracker("翻译进度", 10, true)
	tr.Increment()
	tr.Done()
}

func TestZeroTotalFallsBackToQuiet(t *testing.T) {
	tr := NewTracker("翻译进度", 0, false)
	if !tr.quiet {
		t.Fatal("total 为零时应退化为静默模式")
	}
	tr.Increment()
	tr.Done()
}

func TestConcurrentIncrements(t *testing.T) {
	tr := NewTracker("翻译进度", 100, true)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Increment()
		}()
	}
	wg.Wait()
	tr.Done()
}
