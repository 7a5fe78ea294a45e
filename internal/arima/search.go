package arima

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/spendtrack/expense-forecast/internal/timeseries"
)

// SearchConfig bounds the order grid explored by Search.
type SearchConfig struct {
	MaxP int
	MaxD int
	MaxQ int
}

// DefaultSearchConfig returns the grid bounds used for expense series.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{MaxP: 3, MaxD: 2, MaxQ: 3}
}

// Selection is the outcome of an order search. When Converged is false no
// candidate order could be fitted and the caller must fall back to a
// non-ARIMA estimator; Order then holds the seeded default (1,1,1).
type Selection struct {
	Converged bool
	Order     Order
	AIC       float64
	Model     *Model
	Evaluated int
}

type candidate struct {
	order Order
	model *Model
	aic   float64
	ok    bool
}

// Search exhaustively fits every order in [0,MaxP]x[0,MaxD]x[0,MaxQ] and
// selects the minimum-AIC fit. Candidates that fail to fit are skipped.
// Candidates are fitted concurrently but ties break on the fixed p-major,
// then d, then q enumeration order, never on completion order. When ctx
// expires, unstarted candidates are skipped exactly like fit failures.
func Search(ctx context.Context, series *timeseries.Series, cfg SearchConfig) Selection {
	var orders []Order
	for p := 0; p <= cfg.MaxP; p++ {
		for d := 0; d <= cfg.MaxD; d++ {
			for q := 0; q <= cfg.MaxQ; q++ {
				orders = append(orders, Order{P: p, D: d, Q: q})
			}
		}
	}

	results := make([]candidate, len(orders))
	jobs := make(chan int)

	workers := runtime.NumCPU()
	if workers > len(orders) {
		workers = len(orders)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				model := New(orders[i].P, orders[i].D, orders[i].Q)
				if err := model.Fit(series); err != nil {
					results[i] = candidate{order: orders[i]}
					continue
				}
				results[i] = candidate{order: orders[i], model: model, aic: model.AIC, ok: true}
			}
		}()
	}

dispatch:
	for i := range orders {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	sel := Selection{Order: Order{P: 1, D: 1, Q: 1}, AIC: math.Inf(1)}
	for _, c := range results {
		if !c.ok {
			continue
		}
		sel.Evaluated++
		if c.aic < sel.AIC {
			sel.Converged = true
			sel.Order = c.order
			sel.AIC = c.aic
			sel.Model = c.model
		}
	}
	return sel
}
