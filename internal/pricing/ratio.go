// Package pricing derives USD prices and price ratios from local prices and
// oracle reference estimates.
package pricing

import "math"

// Price converts a local-currency price to USD and computes the ratio of the
// local price to the US reference price. It is pure and idempotent; the
// verification pass reapplies it to whole categories.
//
// No local price means no outputs. The ratio needs a strictly positive
// reference price.
func Price(priceLocal *int, referenceUSD *int, exchangeRate float64) (priceUSD *float64, priceRatio *float64) {
	if priceLocal == nil {
		return nil, nil
	}

	usd := round2(float64(*priceLocal) * exchangeRate)
	priceUSD = &usd

	if referenceUSD != nil && *referenceUSD > 0 {
		ratio := round2(usd / float64(*referenceUSD))
		priceRatio = &ratio
	}
	return priceUSD, priceRatio
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
