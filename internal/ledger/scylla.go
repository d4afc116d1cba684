package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// maxCASRetries borne le nombre de relectures quand l'UPDATE conditionnel
// n'est pas appliqué (réservation concurrente sur le même produit).
const maxCASRetries = 8

// ScyllaLedger applique les mouvements de stock via des transactions légères
// (LWT) : lecture de la quantité courante puis UPDATE ... IF quantity = ?.
// Deux réservations concurrentes sur le même produit ne peuvent donc jamais
// passer toutes les deux sur la même valeur lue.
type ScyllaLedger struct {
	session func() (*gocql.Session, error)
}

// NewScylla reçoit un accesseur de session (keyspace produits) plutôt qu'une
// session figée : les sessions sont recréées à la volée par le manager.
func NewScylla(session func() (*gocql.Session, error)) *ScyllaLedger {
	return &ScyllaLedger{session: session}
}

func (l *ScyllaLedger) Reserve(ctx context.Context, productID gocql.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	session, err := l.session()
	if err != nil {
		return 0, fmt.Errorf("connexion ScyllaDB : %w", err)
	}

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		var current int
		if err := session.Query(`SELECT quantity FROM products WHERE product_id = ?`, productID).
			WithContext(ctx).Scan(&current); err != nil {
			if errors.Is(err, gocql.ErrNotFound) {
				return 0, ErrProductNotFound
			}
			return 0, fmt.Errorf("lecture stock : %w", err)
		}

		if current < amount {
			return 0, &InsufficientStockError{ProductID: productID, Available: current, Requested: amount}
		}

		next := current - amount
		applied, err := session.Query(
			`UPDATE products SET quantity = ?, updated_at = ? WHERE product_id = ? IF quantity = ?`,
			next, time.Now().UTC(), productID, current,
		).WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return 0, fmt.Errorf("réservation stock : %w", err)
		}
		if applied {
			return next, nil
		}
		// conflit : la quantité a bougé entre la lecture et l'écriture, on relit
	}

	return 0, fmt.Errorf("réservation produit %s : trop de conflits concurrents", productID)
}

func (l *ScyllaLedger) Release(ctx context.Context, productID gocql.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	session, err := l.session()
	if err != nil {
		return 0, fmt.Errorf("connexion ScyllaDB : %w", err)
	}

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		var current int
		if err := session.Query(`SELECT quantity FROM products WHERE product_id = ?`, productID).
			WithContext(ctx).Scan(&current); err != nil {
			if errors.Is(err, gocql.ErrNotFound) {
				return 0, ErrProductNotFound
			}
			return 0, fmt.Errorf("lecture stock : %w", err)
		}

		next := current + amount
		applied, err := session.Query(
			`UPDATE products SET quantity = ?, updated_at = ? WHERE product_id = ? IF quantity = ?`,
			next, time.Now().UTC(), productID, current,
		).WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return 0, fmt.Errorf("libération stock : %w", err)
		}
		if applied {
			return next, nil
		}
	}

	return 0, fmt.Errorf("libération produit %s : trop de conflits concurrents", productID)
}
