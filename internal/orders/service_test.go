package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"officine_back_end/internal/ledger"
	"officine_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *ledger.MemoryLedger, *MemoryStore) {
	l := ledger.NewMemory()
	s := NewMemoryStore()
	return NewService(l, s), l, s
}

func cartLine(pid gocql.UUID, name string, qty int, price float64) models.CartItem {
	return models.CartItem{
		ProductID:    pid,
		ProductName:  name,
		PharmacyID:   gocql.TimeUUID(),
		PharmacyName: "Pharmacie du Centre",
		Quantity:     qty,
		Price:        price,
	}
}

func TestCheckoutPanierVide(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Checkout(context.Background(), "user-1", nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutLigneInvalide(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	_, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 0, 2.50)})
	assert.ErrorIs(t, err, ErrInvalidLine)

	// Rien n'a été réservé
	q, _ := l.Stock(pid)
	assert.Equal(t, 10, q)
}

func TestCheckoutSucces(t *testing.T) {
	svc, l, store := newTestService()
	p1, p2 := gocql.TimeUUID(), gocql.TimeUUID()
	l.SetStock(p1, 10)
	l.SetStock(p2, 5)

	lines := []models.CartItem{
		cartLine(p1, "Doliprane 1000mg", 2, 2.50),
		cartLine(p2, "Vitamine C", 1, 8.90),
	}

	order, err := svc.Checkout(context.Background(), "user-1", lines)
	require.NoError(t, err)

	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, "user-1", order.UserID)
	assert.InDelta(t, 13.90, order.TotalAmount, 0.001)
	assert.Len(t, order.PickupCode, 6)
	require.Len(t, order.Items, 2)

	// L'instantané copie nom et prix du moment
	assert.Equal(t, "Doliprane 1000mg", order.Items[0].ProductName)
	assert.Equal(t, 2.50, order.Items[0].Price)

	// Le stock a bien été décompté
	q1, _ := l.Stock(p1)
	q2, _ := l.Stock(p2)
	assert.Equal(t, 8, q1)
	assert.Equal(t, 4, q2)

	// La commande est retrouvable
	got, err := store.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

// Panier de trois lignes dont deux en échec : aucune réservation ne doit
// survivre et chaque ligne en échec doit être énumérée avec sa raison.
func TestCheckoutToutOuRien(t *testing.T) {
	svc, l, store := newTestService()
	p1, p2 := gocql.TimeUUID(), gocql.TimeUUID()
	absent := gocql.TimeUUID()
	l.SetStock(p1, 10)
	l.SetStock(p2, 1)

	lines := []models.CartItem{
		cartLine(p1, "Doliprane", 2, 2.50),
		cartLine(p2, "Spasfon", 3, 4.20),          // stock insuffisant
		cartLine(absent, "Produit retiré", 1, 5.0), // supprimé du catalogue
	}

	_, err := svc.Checkout(context.Background(), "user-1", lines)

	var unavailable *StockUnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Len(t, unavailable.Lines, 2)

	byProduct := map[gocql.UUID]FailedLine{}
	for _, f := range unavailable.Lines {
		byProduct[f.ProductID] = f
	}

	assert.Equal(t, ReasonInsufficientStock, byProduct[p2].Reason)
	assert.Equal(t, 1, byProduct[p2].Available)
	assert.Equal(t, 3, byProduct[p2].Requested)
	assert.Equal(t, ReasonProductNotFound, byProduct[absent].Reason)

	// Les stocks sont exactement ceux d'avant le checkout
	q1, _ := l.Stock(p1)
	q2, _ := l.Stock(p2)
	assert.Equal(t, 10, q1)
	assert.Equal(t, 1, q2)

	// Aucune commande n'a été écrite
	all, err := store.ListAll(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// Le stock peut être couvert ligne à ligne mais pas pour le cumul : un stock
// de 4 ne couvre pas deux lignes de 3 du même produit.
func TestCheckoutCumulMemeProduit(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 4)

	lines := []models.CartItem{
		cartLine(pid, "Ibuprofène", 3, 3.10),
		cartLine(pid, "Ibuprofène", 3, 3.10),
	}

	_, err := svc.Checkout(context.Background(), "user-1", lines)

	var unavailable *StockUnavailableError
	require.ErrorAs(t, err, &unavailable)

	q, _ := l.Stock(pid)
	assert.Equal(t, 4, q)
}

// failingCreateStore simule une panne du stockage à l'écriture de la commande.
type failingCreateStore struct {
	*MemoryStore
}

func (s *failingCreateStore) Create(context.Context, *models.Order) error {
	return errors.New("timeout scylla")
}

// Si la commande ne peut pas être écrite, les réservations déjà prises
// doivent être rendues : pas de stock décompté sans commande en face.
func TestCheckoutPanneDuStore(t *testing.T) {
	l := ledger.NewMemory()
	store := &failingCreateStore{MemoryStore: NewMemoryStore()}
	svc := NewService(l, store)

	p1, p2 := gocql.TimeUUID(), gocql.TimeUUID()
	l.SetStock(p1, 10)
	l.SetStock(p2, 5)

	lines := []models.CartItem{
		cartLine(p1, "Doliprane", 2, 2.50),
		cartLine(p2, "Vitamine C", 1, 8.90),
	}

	_, err := svc.Checkout(context.Background(), "user-1", lines)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	// Les stocks sont revenus à leur niveau d'avant le checkout
	q1, _ := l.Stock(p1)
	q2, _ := l.Stock(p2)
	assert.Equal(t, 10, q1)
	assert.Equal(t, 5, q2)

	// Et aucune commande n'existe
	all, err := store.ListAll(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInstantaneInsensibleAuxModifsProduit(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	order, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 1, 2.50)})
	require.NoError(t, err)

	// Le produit change de prix après la commande
	got, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	got.Items[0].Price = 99.0 // mutation du résultat, pas du store

	again, err := svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.50, again.Items[0].Price)
	assert.InDelta(t, 2.50, again.TotalAmount, 0.001)
}

func TestAcceptPasseEnConfirmed(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	order, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 2, 2.50)})
	require.NoError(t, err)

	updated, err := svc.Accept(context.Background(), order.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, updated.Status)

	// L'acceptation ne touche pas au stock déjà réservé
	q, _ := l.Stock(pid)
	assert.Equal(t, 8, q)
}

func TestAcceptRefuseAuxNonAdmins(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	order, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 1, 2.50)})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), order.ID, models.RoleUser)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRejectRestitueLeStock(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	order, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 4, 2.50)})
	require.NoError(t, err)

	q, _ := l.Stock(pid)
	require.Equal(t, 6, q)

	updated, err := svc.Reject(context.Background(), order.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, updated.Status)

	q, _ = l.Stock(pid)
	assert.Equal(t, 10, q)
}

func TestCancelParLeProprietaire(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	order, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 3, 2.50)})
	require.NoError(t, err)

	updated, err := svc.Cancel(context.Background(), order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, updated.Status)

	// Conservation : le stock revient exactement à son niveau initial
	q, _ := l.Stock(pid)
	assert.Equal(t, 10, q)
}

func TestCancelParUnTiers(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	order, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 1, 2.50)})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, "user-2")
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Le stock reste réservé
	q, _ := l.Stock(pid)
	assert.Equal(t, 9, q)
}

type countingStore struct {
	*MemoryStore
	gets int
}

func (s *countingStore) GetByID(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	s.gets++
	return s.MemoryStore.GetByID(ctx, id)
}

// Le contrôle de propriété se fait sur la lecture déjà nécessaire à la
// transition : une annulation ne coûte qu'un seul aller-retour de lecture.
func TestCancelUneSeuleLecture(t *testing.T) {
	l := ledger.NewMemory()
	store := &countingStore{MemoryStore: NewMemoryStore()}
	svc := NewService(l, store)

	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	order, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 2, 2.50)})
	require.NoError(t, err)

	store.gets = 0
	_, err = svc.Cancel(context.Background(), order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets)

	// Même chose pour un refus de propriété : une lecture, pas deux
	order2, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 1, 2.50)})
	require.NoError(t, err)

	store.gets = 0
	_, err = svc.Cancel(context.Background(), order2.ID, "user-2")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, store.gets)
}

func TestCancelCommandeIntrouvable(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Cancel(context.Background(), gocql.TimeUUID(), "user-1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

// Un second cancel (ou un reject après cancel) ne doit ni passer ni
// re-restituer le stock : la transition CAS ne s'applique qu'une fois.
func TestDoubleAnnulationSansDoubleRestitution(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	order, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 4, 2.50)})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, "user-1")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, "user-1")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.OrderCancelled, invalid.Current)

	_, err = svc.Reject(context.Background(), order.ID, models.RoleAdmin)
	require.ErrorAs(t, err, &invalid)

	// Une seule restitution a eu lieu
	q, _ := l.Stock(pid)
	assert.Equal(t, 10, q)
}

func TestAcceptSurCommandeAnnulee(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 10)

	order, err := svc.Checkout(context.Background(), "user-1",
		[]models.CartItem{cartLine(pid, "Doliprane", 2, 2.50)})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), order.ID, "user-1")
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), order.ID, models.RoleAdmin)
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, models.OrderCancelled, invalid.Current)
}

// Deux checkouts concurrents sur le même stock limité : au plus un passe, et
// la somme stock restant + réservations émises reste égale au stock initial.
func TestCheckoutConcurrent(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 5)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), user,
				[]models.CartItem{cartLine(pid, "Doliprane", 3, 2.50)})
			results <- err
		}("user-" + string(rune('a'+i)))
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
		} else {
			var unavailable *StockUnavailableError
			require.ErrorAs(t, err, &unavailable)
		}
	}

	assert.Equal(t, 1, successes)
	q, _ := l.Stock(pid)
	assert.Equal(t, 2, q)
}

func TestListByUser(t *testing.T) {
	svc, l, _ := newTestService()
	pid := gocql.TimeUUID()
	l.SetStock(pid, 100)

	for i := 0; i < 3; i++ {
		_, err := svc.Checkout(context.Background(), "user-1",
			[]models.CartItem{cartLine(pid, "Doliprane", 1, 2.50)})
		require.NoError(t, err)
	}
	_, err := svc.Checkout(context.Background(), "user-2",
		[]models.CartItem{cartLine(pid, "Doliprane", 1, 2.50)})
	require.NoError(t, err)

	mine, err := svc.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	all, err := svc.ListAll(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
