package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// The catalog feeds room-label suggestions. It is a convenience collaborator:
// the session coordinator is fully functional without it.

var ErrUnavailable = errors.New("catalog unavailable")

const redisTitlesKey = "catalog:titles"

type ICatalogService interface {
	ListTitles(ctx context.Context) ([]string, error)
}

type catalogService struct {
	rdc      *redis.Client
	db       *sql.DB
	cacheTTL time.Duration
}

func NewCatalogService(rdc *redis.Client, db *sql.DB, cacheTTL time.Duration) ICatalogService {
	return &catalogService{rdc: rdc, db: db, cacheTTL: cacheTTL}
}

// Disabled returns a catalog that reports ErrUnavailable for every call,
// used when the backing stores could not be reached at startup.
func Disabled() ICatalogService { return disabledCatalog{} }

type disabledCatalog struct{}

func (disabledCatalog) ListTitles(context.Context) ([]string, error) {
	return nil, ErrUnavailable
}

// ListTitles serves from the Redis cache when warm, else reads Postgres and
// refills the cache best-effort.
func (svc *catalogService) ListTitles(ctx context.Context) ([]string, error) {
	if cached, err := svc.rdc.Get(ctx, redisTitlesKey).Result(); err == nil {
		var titles []string
		if jsonErr := json.Unmarshal([]byte(cached), &titles); jsonErr == nil {
			return titles, nil
		}
		// Corrupt cache entry: fall through to the DB and overwrite it.
		zap.L().Warn("catalog.cache_corrupt", zap.String("key", redisTitlesKey))
	}

	rows, err := svc.db.QueryContext(ctx, `SELECT name FROM titles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		titles = append(titles, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(titles); err == nil {
		if err := svc.rdc.Set(ctx, redisTitlesKey, raw, svc.cacheTTL).Err(); err != nil {
			zap.L().Debug("catalog.cache_set", zap.Error(err))
		}
	}
	return titles, nil
}
