// internal/domain/models/product.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product status values.
const (
	ProductActive       = "active"
	ProductOutOfStock   = "out_of_stock"
	ProductDiscontinued = "discontinued"
)

// ProductStatuses is the canonical product status enum.
var ProductStatuses = []string{ProductActive, ProductOutOfStock, ProductDiscontinued}

// Product is a shop item (supplements, sensory aids, books). Deleting a
// product that appears in an order must not remove the document: it is marked
// discontinued and inactive instead so order history stays resolvable.
type Product struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"`

	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CategoryID  primitive.ObjectID `bson:"category_id" json:"category_id"`

	Price    float64 `bson:"price" json:"price"`
	Stock    int     `bson:"stock" json:"stock"`
	SKU      string  `bson:"sku,omitempty" json:"sku,omitempty"`
	Status   string  `bson:"status" json:"status"`
	IsActive bool    `bson:"is_active" json:"is_active"`

	ImagePaths []string `bson:"image_paths,omitempty" json:"image_paths,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Order status values.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
)

// OrderStatuses is the canonical order status enum.
var OrderStatuses = []string{OrderPending, OrderPaid, OrderCancelled}

// Order is the minimal order record this backend needs: enough to answer
// "is this product referenced by any order" for the soft-delete rule, and to
// keep a transaction history per customer email.
type Order struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	CustomerEmail string             `bson:"customer_email" json:"customer_email"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Total         float64            `bson:"total" json:"total"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// OrderItem is one product line inside an order.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
}
