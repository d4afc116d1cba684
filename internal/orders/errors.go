package orders

import (
	"errors"
	"fmt"

	"officine_back_end/internal/models"

	"github.com/gocql/gocql"
)

var (
	ErrEmptyCart     = errors.New("panier vide")
	ErrInvalidLine   = errors.New("ligne de panier invalide")
	ErrOrderNotFound = errors.New("commande introuvable")
	ErrUnauthorized  = errors.New("opération non autorisée")

	// ErrStoreUnavailable enveloppe une défaillance transitoire du stockage.
	// Aucune mutation partielle ne subsiste quand il est retourné.
	ErrStoreUnavailable = errors.New("stockage indisponible")
)

// Raisons d'échec d'une ligne au checkout.
const (
	ReasonInsufficientStock = "insufficient_stock"
	ReasonProductNotFound   = "product_not_found"
)

// FailedLine décrit pourquoi une ligne du panier a été refusée, avec le stock
// réellement disponible pour que le client puisse ajuster la quantité.
type FailedLine struct {
	ProductID   gocql.UUID `json:"product_id"`
	ProductName string     `json:"product_name"`
	Reason      string     `json:"reason"`
	Available   int        `json:"available"`
	Requested   int        `json:"requested"`
}

// StockUnavailableError : au moins une ligne a échoué, le checkout entier a été
// annulé et toutes les réservations déjà prises ont été rendues.
type StockUnavailableError struct {
	Lines []FailedLine
}

func (e *StockUnavailableError) Error() string {
	return fmt.Sprintf("stock indisponible sur %d ligne(s)", len(e.Lines))
}

// InvalidTransitionError : la commande n'est pas dans l'état requis pour la
// transition demandée. Current permet au client de rafraîchir son affichage
// au lieu de réessayer à l'aveugle.
type InvalidTransitionError struct {
	Current models.OrderStatus
	Target  models.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition interdite : statut courant %q, visé %q", e.Current, e.Target)
}
