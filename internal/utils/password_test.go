package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEtVerify(t *testing.T) {
	hash, err := HashPassword("motdepasse-solide")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("motdepasse-solide", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("mauvais-mot-de-passe", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSaleADifferent(t *testing.T) {
	h1, err := HashPassword("pareil")
	require.NoError(t, err)
	h2, err := HashPassword("pareil")
	require.NoError(t, err)

	// Sel aléatoire : deux hashs du même mot de passe diffèrent
	assert.NotEqual(t, h1, h2)
}

func TestVerifyHashInvalide(t *testing.T) {
	_, err := VerifyPassword("peu importe", "pas-un-hash-phc")
	assert.Error(t, err)

	_, err = VerifyPassword("peu importe", "$bcrypt$quelquechose")
	assert.Error(t, err)
}
