package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ivoryscan/internal/model"
)

// scriptedOracle returns one canned answer per call, in order.
type scriptedOracle struct {
	answers []string
	errs    []error
	calls   int
	prompts []string
}

func (o *scriptedOracle) Estimate(_ context.Context, prompt string) (string, error) {
	i := o.calls
	o.calls++
	o.prompts = append(o.prompts, prompt)
	var err error
	if i < len(o.errs) {
		err = o.errs[i]
	}
	var ans string
	if i < len(o.answers) {
		ans = o.answers[i]
	}
	return ans, err
}

func makeProducts(n int) []model.Product {
	ps := make([]model.Product, n)
	for i := range ps {
		price := (i + 1) * 100
		ps[i] = model.Product{
			ID:         fmt.Sprintf("p%d", i+1),
			Name:       fmt.Sprintf("Product %d", i+1),
			PriceLocal: &price,
			Currency:   "ILS",
		}
	}
	return ps
}

func newTestBatcher(o Oracle) *Batcher {
	return &Batcher{Oracle: o, Delay: 0, EnrichBatchSize: 5, VerifyBatchSize: 10}
}

func TestEnrichAppliesByIndex(t *testing.T) {
	oracle := &scriptedOracle{answers: []string{
		`[{"index": 1, "manufacturer": "Samsung", "part_number": "990-PRO", "description_en": "Samsung SSD", "us_rrp_usd": 180},
		  {"index": 2, "manufacturer": "Kingston", "part_number": null, "description_en": null, "us_rrp_usd": null}]`,
	}}

	got := newTestBatcher(oracle).Enrich(context.Background(), makeProducts(2), "SSD NVMe")

	if got[0].Manufacturer == nil || *got[0].Manufacturer != "Samsung" {
		t.Errorf("product 1 manufacturer = %v", got[0].Manufacturer)
	}
	if got[0].ReferenceUSD == nil || *got[0].ReferenceUSD != 180 {
		t.Errorf("product 1 rrp = %v", got[0].ReferenceUSD)
	}
	if got[1].Manufacturer == nil || *got[1].Manufacturer != "Kingston" {
		t.Errorf("product 2 manufacturer = %v", got[1].Manufacturer)
	}
	if got[1].ReferenceUSD != nil {
		t.Errorf("product 2 rrp = %v, want nil", *got[1].ReferenceUSD)
	}
}

func TestEnrichStripsCodeFence(t *testing.T) {
	oracle := &scriptedOracle{answers: []string{
		"```json\n[{\"index\": 1, \"manufacturer\": \"ASUS\", \"part_number\": \"X1\", \"description_en\": \"board\", \"us_rrp_usd\": 220}]\n```",
	}}

	got := newTestBatcher(oracle).Enrich(context.Background(), makeProducts(1), "Motherboards")
	if got[0].Manufacturer == nil || *got[0].Manufacturer != "ASUS" {
		t.Errorf("manufacturer = %v, fence was not stripped", got[0].Manufacturer)
	}
}

func TestEnrichIgnoresOutOfRangeIndex(t *testing.T) {
	oracle := &scriptedOracle{answers: []string{
		`[{"index": 3, "manufacturer": "Ghost", "us_rrp_usd": 10},
		  {"index": 0, "manufacturer": "Ghost", "us_rrp_usd": 10},
		  {"index": 2, "manufacturer": "Real", "us_rrp_usd": 50}]`,
	}}

	got := newTestBatcher(oracle).Enrich(context.Background(), makeProducts(2), "RAM DDR5")

	if got[0].Manufacturer != nil {
		t.Errorf("product 1 = %v, must be untouched", *got[0].Manufacturer)
	}
	if got[1].Manufacturer == nil || *got[1].Manufacturer != "Real" {
		t.Errorf("product 2 manufacturer = %v", got[1].Manufacturer)
	}
}

func TestEnrichDuplicateIndexLastWins(t *testing.T) {
	oracle := &scriptedOracle{answers: []string{
		`[{"index": 1, "manufacturer": "First", "us_rrp_usd": 10},
		  {"index": 1, "manufacturer": "Second", "us_rrp_usd": 20}]`,
	}}

	got := newTestBatcher(oracle).Enrich(context.Background(), makeProducts(1), "RAM DDR4")
	if got[0].Manufacturer == nil || *got[0].Manufacturer != "Second" {
		t.Errorf("manufacturer = %v, want last write to win", got[0].Manufacturer)
	}
}

func TestEnrichMalformedBatchIsolated(t *testing.T) {
	// 25 products, batch size 5: five calls; batch 3 replies garbage
	answers := make([]string, 5)
	for b := 0; b < 5; b++ {
		if b == 2 {
			answers[b] = "sorry, I cannot help with that"
			continue
		}
		entries := ""
		for i := 1; i <= 5; i++ {
			if i > 1 {
				entries += ","
			}
			entries += fmt.Sprintf(`{"index": %d, "manufacturer": "M%d", "part_number": "PN", "description_en": "d", "us_rrp_usd": %d}`, i, b*5+i, 100+i)
		}
		answers[b] = "[" + entries + "]"
	}
	oracle := &scriptedOracle{answers: answers}

	got := newTestBatcher(oracle).Enrich(context.Background(), makeProducts(25), "SSD NVMe")

	if oracle.calls != 5 {
		t.Fatalf("oracle calls = %d, want 5", oracle.calls)
	}
	for i, p := range got {
		inBadBatch := i >= 10 && i < 15
		if inBadBatch {
			if p.Manufacturer != nil || p.PartNumber != nil || p.ReferenceUSD != nil {
				t.Errorf("product %d enriched despite malformed batch", i+1)
			}
		} else if p.Manufacturer == nil || p.ReferenceUSD == nil {
			t.Errorf("product %d missing enrichment", i+1)
		}
	}
}

func TestEnrichOracleErrorLeavesBatchUnchanged(t *testing.T) {
	oracle := &scriptedOracle{errs: []error{errors.New("timeout")}}

	got := newTestBatcher(oracle).Enrich(context.Background(), makeProducts(3), "CPU")
	for i, p := range got {
		if p.Manufacturer != nil || p.ReferenceUSD != nil {
			t.Errorf("product %d changed after oracle failure", i+1)
		}
	}
}

func TestEnrichPromptNumbersProducts(t *testing.T) {
	oracle := &scriptedOracle{answers: []string{"[]"}}
	newTestBatcher(oracle).Enrich(context.Background(), makeProducts(2), "RAM DDR5")

	if len(oracle.prompts) != 1 {
		t.Fatalf("calls = %d", len(oracle.prompts))
	}
	prompt := oracle.prompts[0]
	for _, want := range []string{"1. Product 1", "2. Product 2", "RAM DDR5"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestDecodeEstimates(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantN   int
		wantErr bool
	}{
		{"plain array", `[{"index": 1}]`, 1, false},
		{"fenced", "```json\n[{\"index\": 1}]\n```", 1, false},
		{"bare fence", "```\n[]\n```", 0, false},
		{"not json", "I could not find these products.", 0, true},
		{"object not array", `{"index": 1}`, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entries, err := decodeEstimates(tc.raw)
			if tc.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && len(entries) != tc.wantN {
				t.Errorf("entries = %d, want %d", len(entries), tc.wantN)
			}
		})
	}
}
