package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummaryRepo struct {
	fakeOrderRepo
	res   *SummaryRes
	since time.Time
}

func (f *fakeSummaryRepo) Summary(_ context.Context, since time.Time) (*SummaryRes, error) {
	f.since = since
	return f.res, nil
}

func TestSummaryEmptyDatabase(t *testing.T) {
	repo := &fakeSummaryRepo{res: &SummaryRes{}}
	uc := NewReportUC(repo, nopLogger{})

	res, err := uc.Summary(context.Background())
	require.NoError(t, err)

	assert.Zero(t, res.NumUsers)
	assert.Zero(t, res.NumOrders)
	assert.Zero(t, res.TotalSales)
	assert.NotNil(t, res.DailyOrders)
	assert.Empty(t, res.DailyOrders)
	assert.NotNil(t, res.ProductCategories)
	assert.Empty(t, res.ProductCategories)
}

func TestSummaryWindowIsThirtyDays(t *testing.T) {
	repo := &fakeSummaryRepo{res: &SummaryRes{
		NumUsers:   3,
		NumOrders:  2,
		TotalSales: 150_00,
		DailyOrders: []DailySales{
			{Date: "2026-08-30", Orders: 2, Sales: 150_00},
		},
		ProductCategories: []CategoryCount{{Category: "Shirts", Count: 5}},
	}}
	uc := NewReportUC(repo, nopLogger{})

	res, err := uc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(150_00), res.TotalSales)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -30), repo.since, time.Minute)
}
