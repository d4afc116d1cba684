package orders

import (
	"context"
	"time"

	"officine_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Store persiste les commandes. Les items sont des instantanés : une fois la
// commande créée, ni le nom ni le prix ne suivent plus le produit d'origine.
type Store interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context, limit int) ([]models.Order, error)

	// TransitionStatus passe la commande de from à to de façon conditionnelle
	// (compare-and-set sur le statut). Retourne applied=false et le statut
	// réellement en base quand la condition échoue : deux annulations
	// concurrentes ne peuvent donc pas restituer le stock deux fois.
	TransitionStatus(ctx context.Context, id gocql.UUID, from, to models.OrderStatus, at time.Time) (bool, models.OrderStatus, error)
}
