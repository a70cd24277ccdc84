package salesforecaster

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/profile"

	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/sales"
)

var benchPredictRes *Prediction

func benchTable(nProducts, nDays int) *sales.Table {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]sales.Record, 0, nProducts*nDays)
	for p := 0; p < nProducts; p++ {
		for d := 0; d < nDays; d++ {
			amount := float64(100*(p%5+1) + 10*(d%7) + (p*d)%13)
			records = append(records, sales.Record{
				Date:     start.AddDate(0, 0, d),
				Product:  fmt.Sprintf("product_%03d", p),
				Category: fmt.Sprintf("category_%d", p%6),
				Quantity: amount / 10,
				Amount:   amount,
			})
		}
	}
	return sales.NewTable(records)
}

func BenchmarkPredict(b *testing.B) {
	table := benchTable(50, 91)

	fopt := forecast.NewDefaultOptions()
	fopt.Parallelization = 4
	svc, err := New(&Options{
		Forecast: fopt,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for b.Loop() {
		benchPredictRes, err = svc.Predict(ctx, table)
		if err != nil {
			panic(err)
		}
	}
}
