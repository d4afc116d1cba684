package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
)

func createProductRequest(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/products", CreateProduct)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// Un prix nul est valide (produit offert, échantillon) : la validation ne
// doit rejeter que les prix négatifs.
func TestCreateProductPrixZeroAccepte(t *testing.T) {
	body := `{"pharmacy_id": "` + gocql.TimeUUID().String() + `",
		"name": "Échantillon vitamine D", "category": "over-the-counter",
		"price": 0, "quantity": 5}`

	w := createProductRequest(t, body)
	assert.NotEqual(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductPrixNegatifRefuse(t *testing.T) {
	body := `{"pharmacy_id": "` + gocql.TimeUUID().String() + `",
		"name": "Doliprane", "category": "over-the-counter",
		"price": -1.50, "quantity": 5}`

	w := createProductRequest(t, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductCategorieInvalide(t *testing.T) {
	body := `{"pharmacy_id": "` + gocql.TimeUUID().String() + `",
		"name": "Rouge à lèvres", "category": "cosmetics",
		"price": 9.90, "quantity": 5}`

	w := createProductRequest(t, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Catégorie invalide")
}
