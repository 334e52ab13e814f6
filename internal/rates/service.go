package rates

import (
	"context"
	"strconv"

	"despensa/internal/config"
	"despensa/internal/logger"
	"despensa/internal/storage"
)

// Service memoizes day quotes in the ledger's metadata table so
// repeated cost queries for one day hit the network once. db may be
// nil; every lookup then goes to the CDN.
type Service struct {
	db     *storage.DB
	client *Client
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, client: NewClient(cfg)}
}

func (s *Service) USDToARS(ctx context.Context, date string) (float64, error) {
	key := "rates." + date
	if s.db != nil {
		cached, err := s.db.GetMetadata(key)
		if err == nil && cached != nil {
			if rate, err := strconv.ParseFloat(*cached, 64); err == nil && rate > 0 {
				return rate, nil
			}
		}
	}

	rate, err := s.client.USDToARS(ctx, date)
	if err != nil {
		return 0, err
	}

	if s.db != nil {
		if err := s.db.SetMetadata(key, strconv.FormatFloat(rate, 'f', -1, 64)); err != nil {
			logger.Warn("quote not cached", "date", date, "err", err)
		}
	}
	return rate, nil
}
