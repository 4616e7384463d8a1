package currency

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/domain"
)

// DefaultFeedURL is the central bank's daily rate feed.
const DefaultFeedURL = "https://cbu.uz/uz/arkhiv-kursov-valyut/json/"

// trackedCharCodes limits ingestion to the currencies users actually hold.
var trackedCharCodes = map[string]bool{
	"USD": true, "EUR": true, "RUB": true, "CNY": true, "GBP": true,
	"JPY": true, "CHF": true, "KRW": true, "AZN": true, "KZT": true,
}

// feedItem mirrors one entry of the cbu.uz JSON payload. Numbers arrive as
// strings.
type feedItem struct {
	Code    string `json:"Code"`
	Ccy     string `json:"Ccy"`
	Name    string `json:"CcyNm_EN"`
	Nominal string `json:"Nominal"`
	Rate    string `json:"Rate"`
	Date    string `json:"Date"` // DD.MM.YYYY
}

// Syncer pulls the feed and appends normalized rate rows.
type Syncer struct {
	store  *Store
	client *http.Client
	url    string
	log    *zap.Logger
}

func NewSyncer(store *Store, feedURL string, log *zap.Logger) *Syncer {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	return &Syncer{
		store:  store,
		client: &http.Client{Timeout: 15 * time.Second},
		url:    feedURL,
		log:    log,
	}
}

// Sync fetches the feed once and upserts rates for tracked currencies.
// Returns the number of new rate rows written.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "build feed request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "fetch rate feed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	var items []feedItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return 0, errors.Wrap(err, "decode rate feed")
	}

	added := 0
	for _, item := range items {
		if !trackedCharCodes[item.Ccy] {
			continue
		}

		normalized, date, nominal, err := normalizeFeedItem(item)
		if err != nil {
			s.log.Warn("skipping malformed feed item", zap.String("ccy", item.Ccy), zap.Error(err))
			continue
		}

		cur, err := s.store.EnsureCurrency(ctx, domain.Currency{
			Code:     item.Code,
			CharCode: item.Ccy,
			Name:     item.Name,
			Nominal:  nominal,
		})
		if err != nil {
			return added, err
		}

		inserted, err := s.store.InsertRate(ctx, cur.ID, normalized, date)
		if err != nil {
			return added, err
		}
		if inserted {
			added++
		}
	}

	s.log.Info("rate sync finished", zap.Int("new_rates", added))
	return added, nil
}

// normalizeFeedItem parses one feed entry and divides the quoted rate by its
// nominal, so the stored rate is always per 1 unit of the currency.
func normalizeFeedItem(item feedItem) (decimal.Decimal, time.Time, int64, error) {
	rate, err := decimal.NewFromString(item.Rate)
	if err != nil {
		return decimal.Zero, time.Time{}, 0, errors.Wrap(err, "parse rate")
	}

	nominal, err := decimal.NewFromString(item.Nominal)
	if err != nil || !nominal.IsPositive() {
		return decimal.Zero, time.Time{}, 0, errors.Errorf("bad nominal %q", item.Nominal)
	}

	date, err := time.Parse("02.01.2006", item.Date)
	if err != nil {
		return decimal.Zero, time.Time{}, 0, errors.Wrap(err, "parse date")
	}

	return rate.Div(nominal), date, nominal.IntPart(), nil
}
