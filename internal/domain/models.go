// Package domain defines the persistence models for categories, products, and
// alerts. These types are mapped with GORM and form the core data layer of the
// inventory backend.
package domain

import (
	"time"
)

// Category groups products (e.g. "Dairy", "Frozen"). Categories are optional:
// a product may exist without one.
type Category struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(100);not null;uniqueIndex:ux_categories_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Product is the trackable inventory item the reconciliation engine evaluates.
//
// Fields:
//   - Quantity: current stock count. A nil quantity means the product is not
//     tracked for stock, so it can never raise OUT_OF_STOCK.
//   - ExpiryDate: optional best-before date (date precision, stored UTC).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Product struct {
	ID         uint       `json:"id"          gorm:"primaryKey"`
	CategoryID *uint      `json:"category_id" gorm:"index"`
	Name       string     `json:"name"        gorm:"type:varchar(255);not null"`
	Quantity   *int       `json:"quantity"`
	ExpiryDate *time.Time `json:"expiry_date" gorm:"type:date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Category *Category `json:"-" gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// ItemSnapshot is the minimal read-only tuple the scan consumes per product.
// It carries no lifecycle; a fresh snapshot is read on every run.
type ItemSnapshot struct {
	ID         uint
	Quantity   *int
	ExpiryDate *time.Time
}

// Alert is a persisted alert condition, owned exclusively by the
// reconciliation engine and the retention manager.
//
// At most one row may exist per (product_id, kind, due_date); the composite
// unique index enforces this so concurrent writers converge through the upsert
// instead of racing an exists-check. A second, logic-enforced invariant keeps
// at most one *active* row per (product_id, kind): when a condition's due date
// shifts, the previous row is deactivated and kept as history.
//
// Fields:
//   - Kind: closed enum, also guarded by a DB check constraint.
//   - DueDate: detection date for OUT_OF_STOCK, expiry date otherwise.
//   - Message: regenerated on every reconciliation of the row.
//   - IsActive: exactly the alerts currently believed true.
//   - IsAck: user acknowledgment flag; independent of IsActive.
type Alert struct {
	ID        uint       `json:"id"         gorm:"primaryKey"`
	ProductID uint       `json:"product_id" gorm:"not null;index;uniqueIndex:ux_alerts_product_kind_due,priority:1"`
	Kind      AlertKind  `json:"kind"       gorm:"type:varchar(16);not null;uniqueIndex:ux_alerts_product_kind_due,priority:2;check:kind IN ('EXPIRED','EXPIRING_SOON','OUT_OF_STOCK')"`
	DueDate   *time.Time `json:"due_date"   gorm:"type:date;uniqueIndex:ux_alerts_product_kind_due,priority:3"`
	Message   string     `json:"message"    gorm:"type:text;not null"`
	IsActive  bool       `json:"is_active"  gorm:"not null;default:true;index"`
	IsAck     bool       `json:"is_ack"     gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Product is the item the alert refers to. Alerts are cascade-deleted
	// if their product is removed.
	Product Product `json:"-" gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Alert.
func (Alert) TableName() string { return "alerts" }
