package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidCategory(t *testing.T) {
	assert.True(t, IsValidCategory(CategoryPrescription))
	assert.True(t, IsValidCategory(CategoryOTC))
	assert.False(t, IsValidCategory("cosmetics"))
	assert.False(t, IsValidCategory(""))
}

// La date de péremption est portée telle quelle (chaîne au format date),
// comme la colonne expiry_date en base : pas de conversion en time.Time.
func TestExpiryDateEstUneChaine(t *testing.T) {
	p := Product{Name: "Doliprane", Category: CategoryOTC, ExpiryDate: "2027-01-31"}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded Product
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2027-01-31", decoded.ExpiryDate)

	// Absente, elle disparaît du JSON au lieu de sortir une date zéro
	empty, err := json.Marshal(Product{Name: "Spasfon", Category: CategoryOTC})
	require.NoError(t, err)
	assert.NotContains(t, string(empty), "expiry_date")
}
