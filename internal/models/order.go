package models

import (
	"time"

	"github.com/gocql/gocql"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// IsTerminal : aucun passage possible depuis completed ou cancelled.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// OrderItem est un instantané pris à la création de la commande : nom et prix
// sont copiés, pas référencés. Modifier le produit après coup ne change rien ici.
type OrderItem struct {
	ProductID    gocql.UUID `json:"product_id"`
	ProductName  string     `json:"product_name"`
	Quantity     int        `json:"quantity"`
	Price        float64    `json:"price"`
	PharmacyID   gocql.UUID `json:"pharmacy_id"`
	PharmacyName string     `json:"pharmacy_name"`
}

type Order struct {
	ID          gocql.UUID  `json:"id"`
	UserID      string      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	PickupCode  string      `json:"pickup_code,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
