package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/domain"
)

// BaseConverter yields the base-currency rate for one unit of a currency.
// Implemented by currency.Service.
type BaseConverter interface {
	RateToBase(ctx context.Context, currencyID int64, asOf *time.Time) (decimal.Decimal, error)
}

type totalsProvider interface {
	MonthlyTotals(ctx context.Context, userID uuid.UUID, month string) ([]CurrencyTotal, error)
	ExpensesByCategory(ctx context.Context, userID uuid.UUID, month string) ([]CategoryTotal, error)
}

// Summary is one month's totals expressed in the base currency.
type Summary struct {
	Month        string          `json:"month,omitempty"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	Currency     string          `json:"currency"`
}

// CategoryBreakdownItem is one category's expense total in the base currency.
type CategoryBreakdownItem struct {
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
}

type Service struct {
	repo      totalsProvider
	converter BaseConverter
	log       *zap.Logger
}

func NewService(repo totalsProvider, converter BaseConverter, log *zap.Logger) *Service {
	return &Service{repo: repo, converter: converter, log: log}
}

// MonthlySummary sums income and expense across all the user's wallets,
// converted to the base currency at the latest rate.
func (s *Service) MonthlySummary(ctx context.Context, userID uuid.UUID, month string) (*Summary, error) {
	buckets, err := s.repo.MonthlyTotals(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	out := &Summary{
		Month:        month,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Currency:     domain.BaseCurrencyCode,
	}
	for _, b := range buckets {
		rate, err := s.converter.RateToBase(ctx, b.CurrencyID, nil)
		if err != nil {
			return nil, err
		}
		converted := b.Total.Mul(rate).Round(2)

		switch b.Type {
		case domain.TransactionIncome:
			out.TotalIncome = out.TotalIncome.Add(converted)
		case domain.TransactionExpense:
			out.TotalExpense = out.TotalExpense.Add(converted)
		}
	}
	out.Net = out.TotalIncome.Sub(out.TotalExpense)
	return out, nil
}

// CategoryBreakdown returns the month's expenses per category in the base
// currency, merging buckets of the same category across currencies.
func (s *Service) CategoryBreakdown(ctx context.Context, userID uuid.UUID, month string) ([]CategoryBreakdownItem, error) {
	buckets, err := s.repo.ExpensesByCategory(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	merged := make(map[int64]*CategoryBreakdownItem, len(buckets))
	order := make([]int64, 0, len(buckets))
	for _, b := range buckets {
		rate, err := s.converter.RateToBase(ctx, b.CurrencyID, nil)
		if err != nil {
			return nil, err
		}
		converted := b.Total.Mul(rate).Round(2)

		item, ok := merged[b.CategoryID]
		if !ok {
			item = &CategoryBreakdownItem{CategoryID: b.CategoryID, CategoryName: b.CategoryName, Total: decimal.Zero}
			merged[b.CategoryID] = item
			order = append(order, b.CategoryID)
		}
		item.Total = item.Total.Add(converted)
	}

	out := make([]CategoryBreakdownItem, 0, len(order))
	for _, id := range order {
		out = append(out, *merged[id])
	}
	return out, nil
}
