// Package exchange looks up the ILS to USD conversion rate, once per run.
package exchange

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"
)

// FallbackRate is used when every rate API is unreachable.
const FallbackRate = 0.27

var client = &http.Client{Timeout: 10 * time.Second}

type rateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

var rateAPIs = []string{
	"https://api.exchangerate-api.com/v4/latest/ILS",
	"https://open.er-api.com/v6/latest/ILS",
}

// Rate returns the current 1 ILS -> USD rate rounded to 4 places, trying
// each API in order and falling back to a fixed approximation when all fail.
func Rate() float64 {
	log.Println("Fetching ILS/USD exchange rate...")

	for _, url := range rateAPIs {
		rate, err := fetchRate(url)
		if err != nil {
			log.Printf("Failed to fetch rate from %s: %v", url, err)
			continue
		}
		log.Printf("Exchange rate: 1 ILS = %v USD", rate)
		return rate
	}

	log.Printf("WARNING: using fallback exchange rate (%v)", FallbackRate)
	return FallbackRate
}

func fetchRate(url string) (float64, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}

	usd, ok := body.Rates["USD"]
	if !ok || usd <= 0 {
		return 0, fmt.Errorf("no USD rate in response")
	}
	return math.Round(usd*10000) / 10000, nil
}
