package cart

import (
	"testing"

	"officine_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(pid, phid gocql.UUID, qty int, price float64) models.CartItem {
	return models.CartItem{
		ProductID:         pid,
		PharmacyID:        phid,
		Quantity:          qty,
		Price:             price,
		AvailableQuantity: 20,
	}
}

func TestMergeItemNouvelleLigne(t *testing.T) {
	pid, phid := gocql.TimeUUID(), gocql.TimeUUID()

	items := MergeItem(nil, item(pid, phid, 2, 3.50))

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestMergeItemIncrementeLaLigneExistante(t *testing.T) {
	pid, phid := gocql.TimeUUID(), gocql.TimeUUID()

	items := MergeItem(nil, item(pid, phid, 2, 3.50))

	fresh := item(pid, phid, 3, 3.90) // prix rafraîchi côté catalogue
	fresh.AvailableQuantity = 15
	items = MergeItem(items, fresh)

	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 3.90, items[0].Price)
	assert.Equal(t, 15, items[0].AvailableQuantity)
}

// Le même produit dans deux pharmacies différentes fait deux lignes.
func TestMergeItemDistingueLesPharmacies(t *testing.T) {
	pid := gocql.TimeUUID()
	ph1, ph2 := gocql.TimeUUID(), gocql.TimeUUID()

	items := MergeItem(nil, item(pid, ph1, 1, 3.50))
	items = MergeItem(items, item(pid, ph2, 1, 3.20))

	assert.Len(t, items, 2)
}

func TestSetQuantity(t *testing.T) {
	pid, phid := gocql.TimeUUID(), gocql.TimeUUID()
	items := MergeItem(nil, item(pid, phid, 2, 3.50))

	items = SetQuantity(items, pid, phid, 7)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestSetQuantityZeroSupprimeLaLigne(t *testing.T) {
	pid, phid := gocql.TimeUUID(), gocql.TimeUUID()
	items := MergeItem(nil, item(pid, phid, 2, 3.50))

	items = SetQuantity(items, pid, phid, 0)
	assert.Empty(t, items)

	items = MergeItem(items, item(pid, phid, 2, 3.50))
	items = SetQuantity(items, pid, phid, -4)
	assert.Empty(t, items)
}

func TestRemoveItem(t *testing.T) {
	p1, p2 := gocql.TimeUUID(), gocql.TimeUUID()
	phid := gocql.TimeUUID()

	items := MergeItem(nil, item(p1, phid, 1, 3.50))
	items = MergeItem(items, item(p2, phid, 2, 1.20))

	items = RemoveItem(items, p1, phid)
	require.Len(t, items, 1)
	assert.Equal(t, p2, items[0].ProductID)

	// Retirer une ligne absente est sans effet
	items = RemoveItem(items, p1, phid)
	assert.Len(t, items, 1)
}

func TestTotalEtCount(t *testing.T) {
	phid := gocql.TimeUUID()

	items := MergeItem(nil, item(gocql.TimeUUID(), phid, 2, 3.50))
	items = MergeItem(items, item(gocql.TimeUUID(), phid, 3, 1.20))

	assert.InDelta(t, 10.60, Total(items), 0.001)
	assert.Equal(t, 5, Count(items))

	assert.Zero(t, Total(nil))
	assert.Zero(t, Count(nil))
}
