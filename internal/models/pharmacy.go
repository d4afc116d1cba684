package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Pharmacy est une fiche statique (adresse, contact, position carte).
// Elle n'est jamais modifiée par le circuit de commande.
type Pharmacy struct {
	ID         gocql.UUID `json:"id"`
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	City       string     `json:"city"`
	PostalCode string     `json:"postal_code"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	CreatedAt  time.Time  `json:"created_at"`
}
