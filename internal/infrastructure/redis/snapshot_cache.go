package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/transactions"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

var (
	_ inventory.SnapshotCache          = (*SnapshotCache)(nil)
	_ transactions.SnapshotInvalidator = (*SnapshotCache)(nil)
)

// SnapshotCache cachea en Redis los snapshots de inventario por producto,
// serializados como JSON. Todas las operaciones son best-effort: cualquier
// error se loguea y la lectura degrada a PostgreSQL.
type SnapshotCache struct {
	client *goredis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewSnapshotCache conecta con Redis y verifica la conexión con un Ping.
func NewSnapshotCache(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*SnapshotCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SnapshotCache{client: client, ttl: ttl, log: log}, nil
}

func snapshotKey(productID string) string {
	return "inventory:product:" + productID
}

// GetProduct devuelve el snapshot cacheado, o (nil, false) en miss o error.
func (c *SnapshotCache) GetProduct(ctx context.Context, productID string) (*dto.ProductInventorySnapshot, bool) {
	raw, err := c.client.Get(ctx, snapshotKey(productID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn().Err(err).Str("product_id", productID).Msg("cache get falló")
		}
		return nil, false
	}
	var snap dto.ProductInventorySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("snapshot cacheado corrupto, descartado")
		c.client.Del(ctx, snapshotKey(productID))
		return nil, false
	}
	return &snap, true
}

// SetProduct cachea el snapshot con el TTL configurado.
func (c *SnapshotCache) SetProduct(ctx context.Context, productID string, snapshot *dto.ProductInventorySnapshot) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("no se pudo serializar snapshot")
		return
	}
	if err := c.client.Set(ctx, snapshotKey(productID), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("cache set falló")
	}
}

// InvalidateProduct elimina el snapshot del producto tras un commit que lo toca.
func (c *SnapshotCache) InvalidateProduct(ctx context.Context, productID string) {
	if err := c.client.Del(ctx, snapshotKey(productID)).Err(); err != nil {
		c.log.Warn().Err(err).Str("product_id", productID).Msg("cache invalidate falló")
	}
}

// Close cierra la conexión con Redis.
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}
