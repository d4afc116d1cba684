package cart

import (
	"officine_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Une ligne de panier est identifiée par le couple (produit, pharmacie) : le
// même produit proposé par deux pharmacies fait deux lignes distinctes.

// MergeItem ajoute item au panier : si la ligne (produit, pharmacie) existe
// déjà, sa quantité est incrémentée et les infos d'affichage (prix,
// disponibilité indicative) sont rafraîchies ; sinon la ligne est ajoutée.
func MergeItem(items []models.CartItem, item models.CartItem) []models.CartItem {
	for i := range items {
		if items[i].ProductID == item.ProductID && items[i].PharmacyID == item.PharmacyID {
			items[i].Quantity += item.Quantity
			items[i].Price = item.Price
			items[i].AvailableQuantity = item.AvailableQuantity
			return items
		}
	}
	return append(items, item)
}

// SetQuantity fixe la quantité d'une ligne. Une quantité ≤ 0 supprime la
// ligne : un panier ne contient jamais de ligne vide ou négative.
func SetQuantity(items []models.CartItem, productID, pharmacyID gocql.UUID, quantity int) []models.CartItem {
	if quantity <= 0 {
		return RemoveItem(items, productID, pharmacyID)
	}
	for i := range items {
		if items[i].ProductID == productID && items[i].PharmacyID == pharmacyID {
			items[i].Quantity = quantity
			break
		}
	}
	return items
}

// RemoveItem retire la ligne (produit, pharmacie) si elle existe.
func RemoveItem(items []models.CartItem, productID, pharmacyID gocql.UUID) []models.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ProductID == productID && it.PharmacyID == pharmacyID {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Total : somme des prix × quantités.
func Total(items []models.CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// Count : nombre total d'unités dans le panier.
func Count(items []models.CartItem) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
