package handlers

import (
	"log"
	"net/http"

	"officine_back_end/internal/cart"
	"officine_back_end/internal/database"
	"officine_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type CartHandler struct {
	Carts *cart.Store
}

func NewCartHandler(carts *cart.Store) *CartHandler {
	return &CartHandler{Carts: carts}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	items, err := h.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": cart.Total(items),
		"count": cart.Count(items),
	})
}

func (h *CartHandler) AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productID, err := gocql.ParseUUID(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id invalide"})
		return
	}

	// Relire le produit en base pour capturer nom, prix et stock du moment
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	product, err := loadProduct(session, productID)
	if err == gocql.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	var pharmacyName string
	if err := session.Query(`SELECT name FROM pharmacies WHERE pharmacy_id = ?`,
		product.PharmacyID).Scan(&pharmacyName); err != nil {
		log.Printf("⚠️ Nom de pharmacie introuvable pour %s: %v", product.PharmacyID, err)
	}

	items, err := h.Carts.Add(c.Request.Context(), userID, models.CartItem{
		ProductID:         product.ID,
		ProductName:       product.Name,
		PharmacyID:        product.PharmacyID,
		PharmacyName:      pharmacyName,
		Quantity:          input.Quantity,
		Price:             product.Price,
		AvailableQuantity: product.Quantity,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": cart.Total(items),
		"count": cart.Count(items),
	})
}

func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID  string `json:"product_id" binding:"required"`
		PharmacyID string `json:"pharmacy_id" binding:"required"`
		Quantity   int    `json:"quantity"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productID, err1 := gocql.ParseUUID(input.ProductID)
	pharmacyID, err2 := gocql.ParseUUID(input.PharmacyID)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiants invalides"})
		return
	}

	items, err := h.Carts.SetQuantity(c.Request.Context(), userID, productID, pharmacyID, input.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": cart.Total(items),
		"count": cart.Count(items),
	})
}

func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")

	productID, err1 := gocql.ParseUUID(c.Param("productId"))
	pharmacyID, err2 := gocql.ParseUUID(c.Query("pharmacy_id"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiants invalides"})
		return
	}

	items, err := h.Carts.Remove(c.Request.Context(), userID, productID, pharmacyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": cart.Total(items),
		"count": cart.Count(items),
	})
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.Carts.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}
