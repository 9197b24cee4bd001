/*
scheduler.go - Periodic maintenance of the calculation caches

PURPOSE:
  The memoizing calculator expires entries lazily on lookup. Inputs that
  are never asked for again would sit in memory until evicted by size, so
  this scheduler sweeps expired entries at a fixed interval.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Logs how many entries were dropped and the current cache usage

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 minute)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewMaintenanceScheduler(calc, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - billing/calculator.go: Calculator.CleanExpired
  - cache/lru.go: LRU cache with TTL
*/
package api

import (
	"sync"
	"time"

	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/logging"
)

// MaintenanceScheduler sweeps expired calculation results.
type MaintenanceScheduler struct {
	Calc          *billing.Calculator
	CheckInterval time.Duration
	Enabled       bool

	log    *logging.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewMaintenanceScheduler creates a new scheduler.
func NewMaintenanceScheduler(calc *billing.Calculator, logger *logging.Logger) *MaintenanceScheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &MaintenanceScheduler{
		Calc:          calc,
		CheckInterval: time.Minute,
		Enabled:       true,
		log:           logger.WithComponent(logging.ComponentApp),
	}
}

// Start begins the scheduler. Calling Start twice is a no-op.
func (ms *MaintenanceScheduler) Start() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if !ms.Enabled {
		ms.log.Info("maintenance scheduler disabled")
		return
	}
	if ms.ticker != nil {
		return
	}

	ms.ticker = time.NewTicker(ms.CheckInterval)
	ms.stop = make(chan struct{})
	ms.wg.Add(1)

	go ms.run(ms.ticker, ms.stop)

	ms.log.Info("maintenance scheduler started", "interval", ms.CheckInterval.String())
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (ms *MaintenanceScheduler) Stop() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.ticker == nil {
		return
	}
	ms.ticker.Stop()
	close(ms.stop)
	ms.wg.Wait()
	ms.ticker = nil
	ms.log.Info("maintenance scheduler stopped")
}

func (ms *MaintenanceScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ms.wg.Done()

	for {
		select {
		case <-ticker.C:
			ms.RunNow()
		case <-stop:
			return
		}
	}
}

// RunNow sweeps immediately and returns the number of dropped entries.
func (ms *MaintenanceScheduler) RunNow() int {
	removed := ms.Calc.CleanExpired()
	metrics, breakEven := ms.Calc.CacheStats()
	ms.log.Debug("calculation caches swept",
		"removed", removed,
		"metrics_entries", metrics.Size,
		"breakeven_entries", breakEven.Size)
	return removed
}

// NextRunTime returns when the next sweep will occur.
func (ms *MaintenanceScheduler) NextRunTime() time.Time {
	return time.Now().Add(ms.CheckInterval)
}
