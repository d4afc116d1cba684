package ledger

import (
	"context"
	"sync"

	"github.com/gocql/gocql"
)

// MemoryLedger tient le stock en mémoire sous mutex. Utilisé par les tests et
// le mode développement sans ScyllaDB ; mêmes garanties d'atomicité que la
// version LWT, à l'échelle du process.
type MemoryLedger struct {
	mu    sync.Mutex
	stock map[gocql.UUID]int
}

func NewMemory() *MemoryLedger {
	return &MemoryLedger{stock: make(map[gocql.UUID]int)}
}

// SetStock fixe le stock d'un produit (seed de test, CRUD admin).
func (l *MemoryLedger) SetStock(productID gocql.UUID, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[productID] = quantity
}

// Stock retourne la quantité courante d'un produit.
func (l *MemoryLedger) Stock(productID gocql.UUID) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q, ok := l.stock[productID]
	return q, ok
}

// Forget supprime le produit du ledger (produit effacé par un admin).
func (l *MemoryLedger) Forget(productID gocql.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.stock, productID)
}

func (l *MemoryLedger) Reserve(_ context.Context, productID gocql.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.stock[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	if current < amount {
		return 0, &InsufficientStockError{ProductID: productID, Available: current, Requested: amount}
	}
	l.stock[productID] = current - amount
	return current - amount, nil
}

func (l *MemoryLedger) Release(_ context.Context, productID gocql.UUID, amount int) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.stock[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	l.stock[productID] = current + amount
	return current + amount, nil
}
