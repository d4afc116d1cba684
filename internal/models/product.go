package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Catégories de produits autorisées.
const (
	CategoryPrescription = "prescription"
	CategoryOTC          = "over-the-counter"
	CategoryWellness     = "wellness"
	CategoryVitamins     = "vitamins"
	CategorySupplements  = "supplements"
)

var categories = map[string]bool{
	CategoryPrescription: true,
	CategoryOTC:          true,
	CategoryWellness:     true,
	CategoryVitamins:     true,
	CategorySupplements:  true,
}

func IsValidCategory(c string) bool {
	return categories[c]
}

// Product appartient à une pharmacie. Quantity est le stock disponible :
// seul le ledger (réservation, libération, ajustement admin) le modifie, le
// CRUD produit n'y touche jamais.
type Product struct {
	ID          gocql.UUID `json:"id"`
	PharmacyID  gocql.UUID `json:"pharmacy_id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Quantity    int        `json:"quantity"`
	Dosage      string     `json:"dosage,omitempty"`
	ExpiryDate  string     `json:"expiry_date,omitempty"`
	Description string     `json:"description"`
	HealthInfo  string     `json:"health_info,omitempty"`
	Usage       string     `json:"usage,omitempty"`
	SideEffects string     `json:"side_effects,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
