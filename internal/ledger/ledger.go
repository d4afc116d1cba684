package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"
)

// Ledger est la source de vérité du stock disponible par produit.
// Reserve et Release sont les deux seules opérations autorisées à toucher la
// quantité depuis le circuit de commande ; la quantité ne passe jamais sous
// zéro, même sous réservations concurrentes.
type Ledger interface {
	// Reserve décrémente atomiquement le stock de amount et retourne la
	// nouvelle quantité. Échoue avec *InsufficientStockError si le stock
	// courant ne couvre pas la demande, ErrProductNotFound si le produit a
	// disparu entre la mise au panier et le checkout.
	Reserve(ctx context.Context, productID gocql.UUID, amount int) (int, error)

	// Release restitue amount unités au stock (annulation / rejet).
	Release(ctx context.Context, productID gocql.UUID, amount int) (int, error)
}

var (
	ErrProductNotFound = errors.New("produit introuvable")
	ErrInvalidAmount   = errors.New("quantité invalide")
)

// InsufficientStockError : le stock courant ne couvre pas la quantité demandée.
type InsufficientStockError struct {
	ProductID gocql.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuffisant pour %s : disponible %d, demandé %d",
		e.ProductID, e.Available, e.Requested)
}
