package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/domain"
)

type fakeRepo struct {
	totals     []CurrencyTotal
	byCategory []CategoryTotal
}

func (f *fakeRepo) MonthlyTotals(context.Context, uuid.UUID, string) ([]CurrencyTotal, error) {
	return f.totals, nil
}

func (f *fakeRepo) ExpensesByCategory(context.Context, uuid.UUID, string) ([]CategoryTotal, error) {
	return f.byCategory, nil
}

type fakeBaseConverter struct {
	rates map[int64]decimal.Decimal
}

func (f *fakeBaseConverter) RateToBase(_ context.Context, currencyID int64, _ *time.Time) (decimal.Decimal, error) {
	rate, ok := f.rates[currencyID]
	if !ok {
		return decimal.Decimal{}, &domain.RateNotFoundError{CharCode: "???"}
	}
	return rate, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newConverter() *fakeBaseConverter {
	return &fakeBaseConverter{rates: map[int64]decimal.Decimal{
		1: decimal.NewFromInt(1), // base
		2: d("12800.00"),         // USD
	}}
}

func TestMonthlySummaryMixedCurrencies(t *testing.T) {
	repo := &fakeRepo{totals: []CurrencyTotal{
		{CurrencyID: 1, Type: domain.TransactionIncome, Total: d("5000000")},
		{CurrencyID: 2, Type: domain.TransactionIncome, Total: d("100")},
		{CurrencyID: 1, Type: domain.TransactionExpense, Total: d("1500000")},
		{CurrencyID: 2, Type: domain.TransactionExpense, Total: d("25.50")},
	}}
	svc := NewService(repo, newConverter(), zap.NewNop())

	s, err := svc.MonthlySummary(context.Background(), uuid.New(), "2026-08")
	require.NoError(t, err)

	// 5,000,000 + 100*12,800 and 1,500,000 + 25.50*12,800
	assert.True(t, s.TotalIncome.Equal(d("6280000.00")), "got %s", s.TotalIncome)
	assert.True(t, s.TotalExpense.Equal(d("1826400.00")), "got %s", s.TotalExpense)
	assert.True(t, s.Net.Equal(d("4453600.00")))
	assert.Equal(t, domain.BaseCurrencyCode, s.Currency)
}

func TestMonthlySummaryEmpty(t *testing.T) {
	svc := NewService(&fakeRepo{}, newConverter(), zap.NewNop())

	s, err := svc.MonthlySummary(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	assert.True(t, s.TotalIncome.IsZero())
	assert.True(t, s.TotalExpense.IsZero())
	assert.True(t, s.Net.IsZero())
}

func TestMonthlySummaryUnknownRate(t *testing.T) {
	repo := &fakeRepo{totals: []CurrencyTotal{
		{CurrencyID: 99, Type: domain.TransactionIncome, Total: d("10")},
	}}
	svc := NewService(repo, newConverter(), zap.NewNop())

	_, err := svc.MonthlySummary(context.Background(), uuid.New(), "")
	var noRate *domain.RateNotFoundError
	assert.ErrorAs(t, err, &noRate)
}

func TestCategoryBreakdownMergesCurrencies(t *testing.T) {
	repo := &fakeRepo{byCategory: []CategoryTotal{
		{CategoryID: 1, CategoryName: "Food", CurrencyID: 1, Total: d("200000")},
		{CategoryID: 1, CategoryName: "Food", CurrencyID: 2, Total: d("10")},
		{CategoryID: 2, CategoryName: "Transport", CurrencyID: 1, Total: d("80000")},
	}}
	svc := NewService(repo, newConverter(), zap.NewNop())

	items, err := svc.CategoryBreakdown(context.Background(), uuid.New(), "2026-08")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Food", items[0].CategoryName)
	assert.True(t, items[0].Total.Equal(d("328000.00")), "got %s", items[0].Total)
	assert.Equal(t, "Transport", items[1].CategoryName)
	assert.True(t, items[1].Total.Equal(d("80000.00")))
}
