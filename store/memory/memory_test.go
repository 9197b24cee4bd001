package memory

import (
	"testing"

	"github.com/warp/breakeven-engine/expenses"
	"github.com/warp/breakeven-engine/expenses/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) expenses.Store {
		return New()
	})
}
