package billing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculator_MatchesPureFunctions(t *testing.T) {
	calc := NewCalculator(16, time.Minute)
	in := WorkScheduleInput{WorkDaysPerWeek: Float(4)}

	assert.Equal(t, CalculateBillableMetrics(in), calc.Metrics(in))
	assert.Equal(t, CalculateBillableMetrics(in), calc.Metrics(in), "cached result is identical")

	m, _ := calc.CacheStats()
	assert.Equal(t, uint64(1), m.Hits)
	assert.Equal(t, uint64(1), m.Misses)
}

func TestCalculator_MissingAndExplicitDefaultsShareEntry(t *testing.T) {
	calc := NewCalculator(16, 0)

	calc.Metrics(WorkScheduleInput{})
	calc.Metrics(DefaultWorkSchedule().Input())

	m, _ := calc.CacheStats()
	assert.Equal(t, 1, m.Size)
	assert.Equal(t, uint64(1), m.Hits)
}

func TestCalculator_BreakEvenErrorNotCached(t *testing.T) {
	calc := NewCalculator(16, 0)

	_, err := calc.BreakEven(BreakEvenInput{MonthlySalary: 1000})
	assert.ErrorIs(t, err, ErrZeroBillableHours)

	_, be := calc.CacheStats()
	assert.Equal(t, 0, be.Size)
}

func TestCalculator_Quote(t *testing.T) {
	calc := NewCalculator(16, 0)

	q, err := calc.Quote(WorkScheduleInput{}, CompensationInput{MonthlySalary: 5000, MarginRatePercent: 15}, 0)
	require.NoError(t, err)
	require.NotNil(t, q.BreakEven)

	assert.Equal(t, 1290.0, q.Metrics.BillableHoursPerYear)
	assert.Equal(t, 53.49, q.BreakEven.HourlyRate)
	assert.Equal(t, DefaultWorkSchedule(), q.Schedule)
}

func TestCalculator_QuoteKeepsMetricsOnError(t *testing.T) {
	calc := NewCalculator(16, 0)

	q, err := calc.Quote(WorkScheduleInput{VacationDaysPerYear: Float(400)}, CompensationInput{MonthlySalary: 5000}, 0)

	assert.ErrorIs(t, err, ErrZeroBillableHours)
	assert.Nil(t, q.BreakEven)
	assert.Equal(t, 0.0, q.Metrics.BillableHoursPerYear)
}

func TestCalculator_ConcurrentUse(t *testing.T) {
	calc := NewCalculator(8, 0)
	want, err := CalculateBreakEven(salaryOnly())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := calc.BreakEven(salaryOnly())
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
