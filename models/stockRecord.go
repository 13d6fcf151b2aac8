package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockRecord is one picking-location inventory position. Rows are created by
// the external stock sync feed and are never deleted by the scheduler; the
// scheduler only moves current_qty and last_sync_at.
type StockRecord struct {
	ID           uint            `gorm:"primary_key" json:"id"`
	CompanyId    string          `gorm:"uniqueIndex:idx_stock_position,priority:1;size:64;not null" json:"company_id"`
	Branch       string          `gorm:"uniqueIndex:idx_stock_position,priority:2;size:20;not null" json:"branch"`
	LocationCode string          `gorm:"uniqueIndex:idx_stock_position,priority:3;size:50;not null" json:"location_code"`
	ProductCode  string          `gorm:"uniqueIndex:idx_stock_position,priority:4;size:60;not null" json:"product_code"`
	Description  string          `gorm:"size:255" json:"description"`
	CurrentQty   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_qty"`
	MinQty       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"min_qty"`
	MaxQty       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"max_qty"`
	AbcClass     string          `gorm:"size:1" json:"abc_class"`
	LastSyncAt   *time.Time      `json:"last_sync_at"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ApplyStockLevel writes a gateway-reported quantity onto every location row
// holding the product in the branch. A product with no stock row is not the
// sync's problem; rowsAffected==0 is reported so the caller can skip silently.
func ApplyStockLevel(ctx context.Context, db *gorm.DB, companyId string, branch string, productCode string, currentQty decimal.Decimal, syncedAt time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&StockRecord{}).
		Where("company_id = ? AND branch = ? AND product_code = ?", companyId, branch, productCode).
		Updates(map[string]interface{}{
			"current_qty":  currentQty,
			"last_sync_at": syncedAt,
		})
	return res.RowsAffected, res.Error
}

// ListBranchStock returns every stock row of a branch, eligible or not.
func ListBranchStock(ctx context.Context, db *gorm.DB, companyId string, branch string) ([]StockRecord, error) {
	var records []StockRecord
	err := db.WithContext(ctx).
		Where("company_id = ? AND branch = ?", companyId, branch).
		Order("location_code ASC").
		Find(&records).Error
	return records, err
}

// ListBelowMinimum returns the rows that qualify for replenishment:
// at or below a defined (non-zero) minimum.
func ListBelowMinimum(ctx context.Context, db *gorm.DB, companyId string, branch string) ([]StockRecord, error) {
	var records []StockRecord
	err := db.WithContext(ctx).
		Where("company_id = ? AND branch = ? AND min_qty > 0 AND current_qty <= min_qty", companyId, branch).
		Find(&records).Error
	return records, err
}

// RefillLocation simulates the physical restock after wave completion:
// current_qty jumps to max_qty and the sync timestamp is refreshed.
func RefillLocation(ctx context.Context, db *gorm.DB, companyId string, branch string, locationCode string, productCode string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&StockRecord{}).
		Where("company_id = ? AND branch = ? AND location_code = ? AND product_code = ?",
			companyId, branch, locationCode, productCode).
		Updates(map[string]interface{}{
			"current_qty":  gorm.Expr("max_qty"),
			"last_sync_at": at,
		}).Error
}
