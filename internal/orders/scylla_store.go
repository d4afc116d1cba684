package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"officine_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ScyllaStore persiste les commandes dans le keyspace orders : table orders
// (partition par order_id) plus table de recherche orders_by_user, sur le
// modèle users / users_by_email. Les items sont sérialisés en JSON : ce sont
// des instantanés, jamais réécrits après création.
type ScyllaStore struct {
	session func() (*gocql.Session, error)
}

func NewScyllaStore(session func() (*gocql.Session, error)) *ScyllaStore {
	return &ScyllaStore{session: session}
}

func (s *ScyllaStore) Create(ctx context.Context, o *models.Order) error {
	session, err := s.session()
	if err != nil {
		return fmt.Errorf("connexion ScyllaDB : %w", err)
	}

	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("sérialisation items : %w", err)
	}

	if err := session.Query(
		`INSERT INTO orders (order_id, user_id, items, total_amount, status, pickup_code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, string(itemsJSON), o.TotalAmount, string(o.Status), o.PickupCode, o.CreatedAt, o.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return fmt.Errorf("insertion commande : %w", err)
	}

	// Table de recherche : non bloquant, la commande principale existe déjà.
	if err := session.Query(
		`INSERT INTO orders_by_user (user_id, created_at, order_id) VALUES (?, ?, ?)`,
		o.UserID, o.CreatedAt, o.ID,
	).WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Indexation orders_by_user échouée pour %s : %v", o.ID, err)
	}

	return nil
}

func (s *ScyllaStore) GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	session, err := s.session()
	if err != nil {
		return nil, fmt.Errorf("connexion ScyllaDB : %w", err)
	}

	var (
		o         models.Order
		itemsJSON string
		status    string
	)
	if err := session.Query(
		`SELECT order_id, user_id, items, total_amount, status, pickup_code, created_at, updated_at
		 FROM orders WHERE order_id = ?`, id,
	).WithContext(ctx).Scan(&o.ID, &o.UserID, &itemsJSON, &o.TotalAmount, &status, &o.PickupCode, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("lecture commande : %w", err)
	}

	o.Status = models.OrderStatus(status)
	if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
		return nil, fmt.Errorf("désérialisation items : %w", err)
	}
	return &o, nil
}

func (s *ScyllaStore) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := s.session()
	if err != nil {
		return nil, fmt.Errorf("connexion ScyllaDB : %w", err)
	}

	iter := session.Query(
		`SELECT order_id FROM orders_by_user WHERE user_id = ?`, userID,
	).WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture orders_by_user : %w", err)
	}

	orders := make([]models.Order, 0, len(ids))
	for _, oid := range ids {
		o, err := s.GetByID(ctx, oid)
		if errors.Is(err, ErrOrderNotFound) {
			// entrée orpheline dans la table de recherche
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (s *ScyllaStore) ListAll(ctx context.Context, limit int) ([]models.Order, error) {
	session, err := s.session()
	if err != nil {
		return nil, fmt.Errorf("connexion ScyllaDB : %w", err)
	}
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	iter := session.Query(
		`SELECT order_id, user_id, items, total_amount, status, pickup_code, created_at, updated_at
		 FROM orders LIMIT ?`, limit,
	).WithContext(ctx).Iter()

	var orders []models.Order
	var (
		o         models.Order
		itemsJSON string
		status    string
	)
	for iter.Scan(&o.ID, &o.UserID, &itemsJSON, &o.TotalAmount, &status, &o.PickupCode, &o.CreatedAt, &o.UpdatedAt) {
		o.Status = models.OrderStatus(status)
		if err := json.Unmarshal([]byte(itemsJSON), &o.Items); err != nil {
			log.Printf("⚠️ Items illisibles pour la commande %s : %v", o.ID, err)
			o.Items = nil
		}
		orders = append(orders, o)
		o = models.Order{}
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture commandes : %w", err)
	}
	return orders, nil
}

func (s *ScyllaStore) TransitionStatus(ctx context.Context, id gocql.UUID, from, to models.OrderStatus, at time.Time) (bool, models.OrderStatus, error) {
	session, err := s.session()
	if err != nil {
		return false, "", fmt.Errorf("connexion ScyllaDB : %w", err)
	}

	// LWT : le statut ne bouge que s'il vaut encore `from`. En cas de refus,
	// ScanCAS renvoie la valeur réellement en base.
	var current string
	applied, err := session.Query(
		`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF status = ?`,
		string(to), at, id, string(from),
	).WithContext(ctx).ScanCAS(&current)
	if err != nil {
		return false, "", fmt.Errorf("transition statut : %w", err)
	}
	if applied {
		return true, to, nil
	}
	return false, models.OrderStatus(current), nil
}
