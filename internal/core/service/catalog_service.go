package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baketrak/order-system/internal/api/metrics"
	"github.com/baketrak/order-system/internal/core/domain"
	"github.com/baketrak/order-system/internal/core/ports"
)

// CatalogService serves the public product listing through a read-through
// cache. Cache failures degrade to the store; they never fail the request.
type CatalogService struct {
	repo   ports.ProductRepository
	cache  ports.CatalogCache
	logger zerolog.Logger
}

// NewCatalogService builds the service. cache may be nil, which disables
// caching entirely.
func NewCatalogService(repo ports.ProductRepository, cache ports.CatalogCache, logger zerolog.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, logger: logger}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	if s.cache != nil {
		products, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache read failed")
		} else if ok {
			metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
			return products, nil
		} else {
			metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, products); err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return products, nil
}
