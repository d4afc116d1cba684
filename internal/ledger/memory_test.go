package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveDecrementeLeStock(t *testing.T) {
	l := NewMemory()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	remaining, err := l.Reserve(context.Background(), pid, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, remaining)

	q, ok := l.Stock(pid)
	require.True(t, ok)
	assert.Equal(t, 7, q)
}

func TestReserveStockInsuffisant(t *testing.T) {
	l := NewMemory()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 2)

	_, err := l.Reserve(context.Background(), pid, 5)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)

	// Un échec ne touche pas au stock
	q, _ := l.Stock(pid)
	assert.Equal(t, 2, q)
}

func TestReserveStockExact(t *testing.T) {
	l := NewMemory()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 5)

	remaining, err := l.Reserve(context.Background(), pid, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	// Plus rien à réserver ensuite
	_, err = l.Reserve(context.Background(), pid, 1)
	var insufficient *InsufficientStockError
	assert.ErrorAs(t, err, &insufficient)
}

func TestReserveProduitInconnu(t *testing.T) {
	l := NewMemory()

	_, err := l.Reserve(context.Background(), gocql.TimeUUID(), 1)
	assert.True(t, errors.Is(err, ErrProductNotFound))
}

func TestReserveQuantiteInvalide(t *testing.T) {
	l := NewMemory()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	_, err := l.Reserve(context.Background(), pid, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = l.Reserve(context.Background(), pid, -3)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestReleaseRestitueLeStock(t *testing.T) {
	l := NewMemory()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	_, err := l.Reserve(context.Background(), pid, 4)
	require.NoError(t, err)

	after, err := l.Release(context.Background(), pid, 4)
	require.NoError(t, err)
	assert.Equal(t, 10, after)
}

func TestReleaseProduitInconnu(t *testing.T) {
	l := NewMemory()

	_, err := l.Release(context.Background(), gocql.TimeUUID(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

// Deux clients veulent chacun 3 unités sur un stock de 5 : un seul doit
// passer, et le stock ne descend jamais sous zéro.
func TestReserveConcurrente(t *testing.T) {
	l := NewMemory()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 5)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Reserve(context.Background(), pid, 3)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, failures int
	for err := range results {
		if err == nil {
			successes++
		} else {
			var insufficient *InsufficientStockError
			require.ErrorAs(t, err, &insufficient)
			failures++
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)

	q, _ := l.Stock(pid)
	assert.Equal(t, 2, q)
}

func TestStockJamaisNegatifSousCharge(t *testing.T) {
	l := NewMemory()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 50)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Reserve(context.Background(), pid, 2)
		}()
	}
	wg.Wait()

	q, _ := l.Stock(pid)
	assert.GreaterOrEqual(t, q, 0)
	assert.Equal(t, 0, q) // 50 unités pour 100 demandes de 2 : tout part
}
