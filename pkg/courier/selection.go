package courier

import (
	"fmt"
	"math"
	"time"
)

// Selection is the outcome of applying a selection strategy to a quote set.
type Selection struct {
	Quote *Quote

	// Expired flags a winner whose expire time has already passed at
	// evaluation time. Callers must not submit an expired quote.
	Expired bool
}

// Select chooses a winning quote under the named strategy. Pure and
// deterministic, no I/O.
//
// PRICE picks the minimum VAT-exclusive price, ties broken by earliest
// dropoff ETA. ETA picks the minimum seconds-until-dropoff measured from now,
// ties broken by lowest price; quotes without an ETA rank last. RATING
// restricts the set to quotes from providers that accept courier-rating
// assignment hints and picks the cheapest of those, falling back to PRICE
// rules over the full set when none qualify.
func Select(strategy SelectionStrategy, quotes []*Quote, now time.Time) (*Selection, error) {
	if len(quotes) == 0 {
		return nil, ErrEmptyQuoteSet
	}

	var best *Quote
	switch strategy {
	case StrategyPrice:
		best = bestByPrice(quotes, now)
	case StrategyETA:
		best = bestByETA(quotes, now)
	case StrategyRating:
		capable := make([]*Quote, 0, len(quotes))
		for _, q := range quotes {
			if q.RatingCapable {
				capable = append(capable, q)
			}
		}
		if len(capable) > 0 {
			best = bestByPrice(capable, now)
		} else {
			best = bestByPrice(quotes, now)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	return &Selection{Quote: best, Expired: best.Expired(now)}, nil
}

func bestByPrice(quotes []*Quote, now time.Time) *Quote {
	best := quotes[0]
	for _, q := range quotes[1:] {
		switch {
		case q.PriceExVAT.Amount < best.PriceExVAT.Amount:
			best = q
		case q.PriceExVAT.Amount == best.PriceExVAT.Amount:
			if secondsUntil(q.DropoffETA, now) < secondsUntil(best.DropoffETA, now) {
				best = q
			}
		}
	}
	return best
}

func bestByETA(quotes []*Quote, now time.Time) *Quote {
	best := quotes[0]
	for _, q := range quotes[1:] {
		qs, bs := secondsUntil(q.DropoffETA, now), secondsUntil(best.DropoffETA, now)
		switch {
		case qs < bs:
			best = q
		case qs == bs:
			if q.PriceExVAT.Amount < best.PriceExVAT.Amount {
				best = q
			}
		}
	}
	return best
}

// secondsUntil ranks a missing ETA last.
func secondsUntil(eta *time.Time, now time.Time) float64 {
	if eta == nil {
		return math.Inf(1)
	}
	return eta.Sub(now).Seconds()
}
