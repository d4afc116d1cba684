package models

import "github.com/gocql/gocql"

// CartItem est une ligne de panier côté client. AvailableQuantity est purement
// indicatif (borne d'affichage capturée au moment de l'ajout) : le stock réel
// est revalidé par le ledger au checkout.
type CartItem struct {
	ProductID         gocql.UUID `json:"product_id"`
	ProductName       string     `json:"product_name"`
	PharmacyID        gocql.UUID `json:"pharmacy_id"`
	PharmacyName      string     `json:"pharmacy_name"`
	Quantity          int        `json:"quantity"`
	Price             float64    `json:"price"`
	AvailableQuantity int        `json:"available_quantity"`
}
