package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"officine_back_end/internal/ledger"
	"officine_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Service orchestre le cycle de vie des commandes : il est le seul point
// d'entrée qui touche à la fois au ledger de stock et au store de commandes,
// et il les traite comme une unité de travail indivisible.
type Service struct {
	ledger ledger.Ledger
	store  Store
}

func NewService(l ledger.Ledger, s Store) *Service {
	return &Service{ledger: l, store: s}
}

type reservedLine struct {
	productID gocql.UUID
	quantity  int
}

// Checkout transforme les lignes du panier en commande `pending`.
// Contrat tout-ou-rien : chaque ligne est réservée dans le ledger ; si une
// seule échoue (stock insuffisant ou produit disparu), toutes les
// réservations déjà prises sont rendues, aucune commande n'est écrite et
// l'appelant reçoit la liste complète des lignes en échec.
func (s *Service) Checkout(ctx context.Context, userID string, lines []models.CartItem) (*models.Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w : quantité %d pour %s", ErrInvalidLine, line.Quantity, line.ProductID)
		}
	}

	// On tente toutes les lignes avant de conclure, pour pouvoir énumérer
	// l'ensemble des échecs au client plutôt que le premier seulement.
	var reserved []reservedLine
	var failed []FailedLine

	for _, line := range lines {
		_, err := s.ledger.Reserve(ctx, line.ProductID, line.Quantity)
		if err == nil {
			reserved = append(reserved, reservedLine{productID: line.ProductID, quantity: line.Quantity})
			continue
		}

		var insufficient *ledger.InsufficientStockError
		switch {
		case errors.As(err, &insufficient):
			failed = append(failed, FailedLine{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Reason:      ReasonInsufficientStock,
				Available:   insufficient.Available,
				Requested:   line.Quantity,
			})
		case errors.Is(err, ledger.ErrProductNotFound):
			failed = append(failed, FailedLine{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Reason:      ReasonProductNotFound,
				Requested:   line.Quantity,
			})
		default:
			// panne du stockage : on rend tout et on remonte
			s.rollback(ctx, reserved)
			return nil, fmt.Errorf("%w : %v", ErrStoreUnavailable, err)
		}
	}

	if len(failed) > 0 {
		s.rollback(ctx, reserved)
		return nil, &StockUnavailableError{Lines: failed}
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:          gocql.TimeUUID(),
		UserID:      userID,
		Items:       snapshotItems(lines),
		TotalAmount: Total(lines),
		Status:      models.OrderPending,
		PickupCode:  newPickupCode(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, order); err != nil {
		// la commande n'existe pas : les réservations non plus
		s.rollback(ctx, reserved)
		return nil, fmt.Errorf("%w : %v", ErrStoreUnavailable, err)
	}

	log.Printf("🧾 Commande %s créée pour %s (%d ligne(s), %.2f€)",
		order.ID, userID, len(order.Items), order.TotalAmount)
	return order, nil
}

// Accept passe une commande pending à confirmed. Réservé aux admins ; le
// stock a déjà été décompté au checkout, aucun mouvement ici.
func (s *Service) Accept(ctx context.Context, orderID gocql.UUID, role string) (*models.Order, error) {
	if role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}
	return s.transition(ctx, orderID, models.OrderConfirmed, false, "")
}

// Reject annule une commande pending côté admin et restitue le stock.
func (s *Service) Reject(ctx context.Context, orderID gocql.UUID, role string) (*models.Order, error) {
	if role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}
	return s.transition(ctx, orderID, models.OrderCancelled, true, "")
}

// Cancel annule une commande pending à la demande de son propriétaire.
func (s *Service) Cancel(ctx context.Context, orderID gocql.UUID, requesterID string) (*models.Order, error) {
	if requesterID == "" {
		return nil, ErrUnauthorized
	}
	return s.transition(ctx, orderID, models.OrderCancelled, true, requesterID)
}

// Get retourne une commande ; l'appelant est responsable du contrôle d'accès.
func (s *Service) Get(ctx context.Context, orderID gocql.UUID) (*models.Order, error) {
	return s.get(ctx, orderID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w : %v", ErrStoreUnavailable, err)
	}
	return list, nil
}

func (s *Service) ListAll(ctx context.Context, limit int) ([]models.Order, error) {
	list, err := s.store.ListAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w : %v", ErrStoreUnavailable, err)
	}
	return list, nil
}

func (s *Service) get(ctx context.Context, orderID gocql.UUID) (*models.Order, error) {
	order, err := s.store.GetByID(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w : %v", ErrStoreUnavailable, err)
	}
	return order, nil
}

// transition applique le CAS pending→to puis, si demandé, restitue le stock
// ligne par ligne. La transition d'abord : une fois acquise, aucune autre
// annulation concurrente ne peut re-restituer le même stock. ownerID non
// vide restreint l'opération au propriétaire de la commande, sur la même
// lecture que la transition (pas de second aller-retour).
func (s *Service) transition(ctx context.Context, orderID gocql.UUID, to models.OrderStatus, releaseStock bool, ownerID string) (*models.Order, error) {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ownerID != "" && order.UserID != ownerID {
		return nil, ErrUnauthorized
	}

	now := time.Now().UTC()
	applied, current, err := s.store.TransitionStatus(ctx, orderID, models.OrderPending, to, now)
	if err != nil {
		return nil, fmt.Errorf("%w : %v", ErrStoreUnavailable, err)
	}
	if !applied {
		return nil, &InvalidTransitionError{Current: current, Target: to}
	}

	if releaseStock {
		// La transition est acquise. Les libérations qui échouent (produit
		// supprimé entre-temps) sont journalisées et laissées à la
		// réconciliation manuelle : la commande reste annulée.
		for _, item := range order.Items {
			if _, err := s.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
				log.Printf("⚠️ Stock non restitué pour %s (qté %d, commande %s) : %v",
					item.ProductID, item.Quantity, orderID, err)
			}
		}
	}

	order.Status = to
	order.UpdatedAt = now
	log.Printf("🔄 Commande %s : pending → %s", orderID, to)
	return order, nil
}

func (s *Service) rollback(ctx context.Context, reserved []reservedLine) {
	for _, r := range reserved {
		if _, err := s.ledger.Release(ctx, r.productID, r.quantity); err != nil {
			log.Printf("⚠️ Rollback réservation impossible pour %s (qté %d) : %v",
				r.productID, r.quantity, err)
		}
	}
}

// snapshotItems copie nom, prix et pharmacie depuis les lignes du panier.
func snapshotItems(lines []models.CartItem) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			Quantity:     line.Quantity,
			Price:        line.Price,
			PharmacyID:   line.PharmacyID,
			PharmacyName: line.PharmacyName,
		})
	}
	return items
}

// Total calcule le montant d'un panier (prix unitaire × quantité par ligne).
func Total(lines []models.CartItem) float64 {
	var total float64
	for _, line := range lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

const pickupAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newPickupCode génère le code de retrait imprimé dans le QR de confirmation.
func newPickupCode() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "RETRAIT"
	}
	for i := range buf {
		buf[i] = pickupAlphabet[int(buf[i])%len(pickupAlphabet)]
	}
	return string(buf)
}
