package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"officine_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
)

// TTL de conservation d'un panier inactif.
const TTL = 30 * 24 * time.Hour

// Événements publiés sur le canal pub/sub du panier.
const (
	EventUpdated = "updated"
	EventCleared = "cleared"
)

// Store garde le panier de chaque utilisateur dans Redis sous forme de blob
// JSON (clé cart:<userID>), et notifie chaque mutation en pub/sub pour la
// synchro temps réel. Le panier est purement client : rien ici ne fait foi
// pour le stock, c'est le ledger qui tranche au checkout.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func key(userID string) string { return "cart:" + userID }

// Channel retourne le canal pub/sub du panier d'un utilisateur.
func Channel(userID string) string { return "cart:" + userID }

func (s *Store) Get(ctx context.Context, userID string) ([]models.CartItem, error) {
	data, err := s.rdb.Get(ctx, key(userID)).Result()
	if err == redis.Nil || data == "" {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture panier : %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("décodage panier : %w", err)
	}
	return items, nil
}

// Add fusionne item dans le panier (incrément si la ligne existe déjà).
func (s *Store) Add(ctx context.Context, userID string, item models.CartItem) ([]models.CartItem, error) {
	if item.Quantity <= 0 {
		return nil, fmt.Errorf("quantité invalide : %d", item.Quantity)
	}
	items, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	items = MergeItem(items, item)
	if err := s.save(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetQuantity fixe la quantité d'une ligne ; ≤ 0 supprime la ligne.
func (s *Store) SetQuantity(ctx context.Context, userID string, productID, pharmacyID gocql.UUID, quantity int) ([]models.CartItem, error) {
	items, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	items = SetQuantity(items, productID, pharmacyID, quantity)
	if err := s.save(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) Remove(ctx context.Context, userID string, productID, pharmacyID gocql.UUID) ([]models.CartItem, error) {
	items, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	items = RemoveItem(items, productID, pharmacyID)
	if err := s.save(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Clear vide complètement le panier (après checkout notamment).
func (s *Store) Clear(ctx context.Context, userID string) error {
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, key(userID))
	pipe.Publish(ctx, Channel(userID), EventCleared)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("vidage panier : %w", err)
	}
	return nil
}

func (s *Store) save(ctx context.Context, userID string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encodage panier : %w", err)
	}

	// écriture + notification dans le même aller-retour
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, key(userID), data, TTL)
	pipe.Publish(ctx, Channel(userID), EventUpdated)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sauvegarde panier : %w", err)
	}
	return nil
}
