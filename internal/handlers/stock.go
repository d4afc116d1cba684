package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"officine_back_end/internal/cache"
	"officine_back_end/internal/database"
	"officine_back_end/internal/ledger"
	"officine_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

var stockLedger = ledger.NewScylla(database.GetProductsSession)

// UpdateStock applique un delta de stock (réassort positif, ajustement négatif)
// et journalise le mouvement. Réservé aux administrateurs.
func UpdateStock(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	var input struct {
		Change int    `json:"change" binding:"required"`
		Reason string `json:"reason"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		newStock     int
		movementType string
	)

	if input.Change > 0 {
		newStock, err = stockLedger.Release(c.Request.Context(), productID, input.Change)
		movementType = models.MovementRestock
	} else {
		newStock, err = stockLedger.Reserve(c.Request.Context(), productID, -input.Change)
		movementType = models.MovementAdjustment
	}

	if err != nil {
		var insufficient *ledger.InsufficientStockError
		switch {
		case errors.Is(err, ledger.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		case errors.As(err, &insufficient):
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Stock insuffisant pour cet ajustement",
				"available": insufficient.Available,
				"requested": insufficient.Requested,
			})
		default:
			log.Printf("❌ Erreur ajustement stock %s: %v", productID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajustement stock"})
		}
		return
	}

	recordStockMovement(models.StockMovement{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		Type:      movementType,
		Quantity:  input.Change,
		PrevStock: newStock - input.Change,
		NewStock:  newStock,
		Reason:    input.Reason,
		UserID:    c.GetString("user_id"),
		CreatedAt: time.Now().UTC(),
	})

	cache.InvalidateProductCache(productID.String())
	cache.InvalidateProductList()

	log.Printf("🔄 Stock ajusté pour %s: %+d → %d", productID, input.Change, newStock)
	c.JSON(http.StatusOK, gin.H{
		"product_id": productID.String(),
		"change":     input.Change,
		"quantity":   newStock,
	})
}

// GetStockMovements liste l'historique des mouvements d'un produit
func GetStockMovements(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	iter := session.Query(`SELECT movement_id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at
		FROM stock_movements WHERE product_id = ?`, productID).Iter()

	movements := []models.StockMovement{}
	var m models.StockMovement
	m.ProductID = productID
	for iter.Scan(&m.ID, &m.Type, &m.Quantity, &m.PrevStock, &m.NewStock, &m.Reason, &m.OrderID, &m.UserID, &m.CreatedAt) {
		movements = append(movements, m)
		m.OrderID = nil
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération mouvements"})
		return
	}

	c.JSON(http.StatusOK, movements)
}

func recordStockMovement(m models.StockMovement) {
	session, err := database.GetProductsSession()
	if err != nil {
		log.Printf("⚠️ Mouvement de stock non journalisé: %v", err)
		return
	}

	err = session.Query(`INSERT INTO stock_movements (product_id, movement_id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ProductID, m.ID, m.Type, m.Quantity, m.PrevStock, m.NewStock, m.Reason, m.OrderID, m.UserID, m.CreatedAt).Exec()
	if err != nil {
		log.Printf("⚠️ Mouvement de stock non journalisé: %v", err)
	}
}
