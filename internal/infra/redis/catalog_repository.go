package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

const catalogKey = "trivia:catalog"

// CatalogRepository caches the catalog snapshot in Redis as one JSON document
// and falls back to the loader on a miss. All instances share the cached copy.
type CatalogRepository struct {
	client *redis.Client
	loader memory.CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader memory.CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) (domain.Catalog, error) {
	if catalog, ok := r.cached(ctx); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if catalog, ok := r.cached(ctx); ok {
			return catalog, nil
		}

		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return domain.Catalog{}, err
		}

		payload, err := json.Marshal(catalog)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("encode catalog: %w", err)
		}
		// A failed write only costs a reload next time.
		_ = r.client.Set(ctx, catalogKey, payload, r.ttlWithJitter()).Err()
		return catalog, nil
	})
	if err != nil {
		return domain.Catalog{}, err
	}
	return result.(domain.Catalog), nil
}

// Invalidate removes the shared snapshot after an admin write.
func (r *CatalogRepository) Invalidate(ctx context.Context) error {
	r.sf.Forget(catalogKey)
	if err := r.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("drop cached catalog: %w", err)
	}
	return nil
}

func (r *CatalogRepository) cached(ctx context.Context) (domain.Catalog, bool) {
	// redis.Nil and connection errors both fall through to the loader.
	raw, err := r.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		return domain.Catalog{}, false
	}
	var catalog domain.Catalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return domain.Catalog{}, false
	}
	return catalog, true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
