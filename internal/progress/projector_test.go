package progress

import (
	"sync"
	"testing"
	"time"

	"partwise/internal/dataset"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestProjector_LatchesPercent(t *testing.T) {
	p := NewProjector()

	p.Observe(dataset.Progress{DatasetName: "INCLUDE", OverallProgress: 0.4, Status: dataset.StatusExtracting})
	// A lower value (e.g. byte-fraction jitter) must not pull the bar back.
	p.Observe(dataset.Progress{DatasetName: "INCLUDE", OverallProgress: 0.3, Status: dataset.StatusExtracting})

	snap := p.Snapshot()
	if snap.Percent != 40 {
		t.Fatalf("percent: %v", snap.Percent)
	}
	if snap.DatasetName != "INCLUDE" || snap.Status != dataset.StatusExtracting {
		t.Fatalf("snapshot: %+v", snap)
	}
}

func TestProjector_TerminalStatusLatches(t *testing.T) {
	p := NewProjector()
	p.Observe(dataset.Progress{OverallProgress: 1.0, Status: dataset.StatusCompleted})
	p.Observe(dataset.Progress{OverallProgress: 0.2, Status: dataset.StatusExtracting})

	snap := p.Snapshot()
	if snap.Status != dataset.StatusCompleted || snap.Percent != 100 {
		t.Fatalf("snapshot: %+v", snap)
	}
	if !snap.Terminal() {
		t.Fatal("completed should be terminal")
	}
}

func TestProjector_ElapsedAndRemaining(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	p := NewProjector(WithClock(clock.Now))

	p.Observe(dataset.Progress{OverallProgress: 0, Status: dataset.StatusExtracting})
	clock.Advance(30 * time.Second)
	p.Observe(dataset.Progress{OverallProgress: 0.25, Status: dataset.StatusExtracting})

	snap := p.Snapshot()
	if snap.Elapsed != 30*time.Second {
		t.Fatalf("elapsed: %v", snap.Elapsed)
	}
	// 25% took 30s, so the remaining 75% projects to 90s.
	if snap.Remaining != 90*time.Second {
		t.Fatalf("remaining: %v", snap.Remaining)
	}

	// Snapshot keeps the elapsed clock moving between observations.
	clock.Advance(10 * time.Second)
	snap = p.Snapshot()
	if snap.Elapsed != 40*time.Second {
		t.Fatalf("elapsed after advance: %v", snap.Elapsed)
	}
}

func TestProjector_NoEstimateAtZeroProgress(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	p := NewProjector(WithClock(clock.Now))

	p.Observe(dataset.Progress{OverallProgress: 0, Status: dataset.StatusExtracting})
	clock.Advance(time.Minute)
	snap := p.Snapshot()
	if snap.Remaining != 0 {
		t.Fatalf("remaining should be unknown at zero progress: %v", snap.Remaining)
	}
	if snap.ETA() != "--" {
		t.Fatalf("eta placeholder: %q", snap.ETA())
	}
}

func TestProjector_ConcurrentReaders(t *testing.T) {
	p := NewProjector()
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					_ = p.Snapshot()
				}
			}
		}()
	}

	for i := 0; i <= 100; i++ {
		p.Observe(dataset.Progress{
			OverallProgress: float64(i) / 100,
			Status:          dataset.StatusExtracting,
		})
	}
	p.Observe(dataset.Progress{OverallProgress: 1, Status: dataset.StatusCompleted})
	close(done)
	wg.Wait()

	if snap := p.Snapshot(); snap.Percent != 100 || snap.Status != dataset.StatusCompleted {
		t.Fatalf("final: %+v", snap)
	}
}

func TestSnapshotLabel(t *testing.T) {
	cases := []struct {
		name string
		snap Snapshot
		want string
	}{
		{"pending", Snapshot{Status: dataset.StatusPending}, "waiting to start"},
		{"file", Snapshot{Status: dataset.StatusExtracting, CurrentCategory: "Animals", CurrentFile: "cat.mp4"}, "Animals: cat.mp4"},
		{"category only", Snapshot{Status: dataset.StatusExtracting, CurrentCategory: "Animals"}, "Animals"},
		{"bare", Snapshot{Status: dataset.StatusExtracting}, "extracting"},
		{"cancelled", Snapshot{Status: dataset.StatusCancelled}, "cancelled"},
		{"failed", Snapshot{Status: dataset.StatusFailed}, "finished with failures"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.snap.Label(); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
