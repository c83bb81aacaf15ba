package samplegen

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"RevBridge/internal/bridge"
)

// Options controls the generated dataset. The same seed always produces the
// same file.
type Options struct {
	Seed      int64
	Customers int
	Months    int
	Start     time.Time
}

// DefaultOptions is a medium dataset starting January 2020.
func DefaultOptions() Options {
	return Options{Seed: 42, Customers: 50, Months: 36, Start: bridge.Month(2020, 1)}
}

var products = []struct {
	id     string
	family string
}{
	{"PROD-CORE", "Platform"},
	{"PROD-ANALYTICS", "Platform"},
	{"PROD-SUPPORT", "Services"},
	{"PROD-API", "Platform"},
	{"PROD-TRAINING", "Services"},
}

var countries = []string{"United Kingdom", "Germany", "France", "United States", "Netherlands"}

var segments = []struct {
	name     string
	baseARR  float64
	spreadMo int
}{
	{"SMB", 500, 6},
	{"Mid-Market", 4000, 12},
	{"Enterprise", 25000, 24},
}

// Generate writes a synthetic revenue file in UK date format. Each customer
// joins at a random month, holds one to three products over contiguous month
// runs, drifts up or down a few percent a month, and may churn before the
// end of the span.
func Generate(path string, opts Options) error {
	if opts.Customers <= 0 || opts.Months <= 0 {
		return fmt.Errorf("samplegen: customers and months must be positive")
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"customer_id", "customer_name", "product_id", "product_family", "country", "month", "arr", "is_recurring"}
	if err := w.Write(header); err != nil {
		return err
	}

	for c := 0; c < opts.Customers; c++ {
		customerID := fmt.Sprintf("CUST-%04d", c+1)
		customerName := fmt.Sprintf("Sample Customer %d", c+1)
		country := countries[rng.Intn(len(countries))]
		seg := segments[rng.Intn(len(segments))]

		joinOffset := rng.Intn(opts.Months * 3 / 4)
		lifetime := opts.Months - joinOffset
		if rng.Float64() < 0.3 {
			// churner: cut the run short
			lifetime = 1 + rng.Intn(maxInt(1, lifetime-1))
		}

		nProducts := 1 + rng.Intn(3)
		order := rng.Perm(len(products))
		for p := 0; p < nProducts; p++ {
			prod := products[order[p]]
			// later products start after the customer joined: cross-sell
			prodOffset := 0
			if p > 0 && lifetime > 2 {
				prodOffset = rng.Intn(lifetime / 2)
			}
			arr := seg.baseARR * (0.5 + rng.Float64())
			for m := joinOffset + prodOffset; m < joinOffset+lifetime; m++ {
				month := opts.Start.AddDate(0, m, 0)
				// small monthly drift, occasional bigger move
				arr *= 1 + (rng.Float64()-0.45)*0.06
				if rng.Float64() < 0.05 {
					arr *= 1 + (rng.Float64()-0.5)*0.5
				}
				rec := []string{
					customerID, customerName, prod.id, prod.family, country,
					month.Format("02/01/2006"),
					fmt.Sprintf("%.2f", arr),
					"1",
				}
				if err := w.Write(rec); err != nil {
					return err
				}
			}
		}
	}
	w.Flush()
	return w.Error()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
