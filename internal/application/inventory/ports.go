package inventory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

// SnapshotCache cachea snapshots de inventario por producto. Un fallo del
// cache nunca es fatal: las lecturas degradan a PostgreSQL.
type SnapshotCache interface {
	GetProduct(ctx context.Context, productID string) (*dto.ProductInventorySnapshot, bool)
	SetProduct(ctx context.Context, productID string, snapshot *dto.ProductInventorySnapshot)
	InvalidateProduct(ctx context.Context, productID string)
}
