package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"officine_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// ================== COMMANDES (ADMIN) ==================

func (h *OrderHandler) ListOrders(c *gin.Context) {
	limit := 100
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	list, err := h.Svc.ListAll(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

// AcceptOrder passe une commande pending en confirmed (le stock reste réservé)
func (h *OrderHandler) AcceptOrder(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	order, err := h.Svc.Accept(c.Request.Context(), orderID, c.GetString("role"))
	if err != nil {
		h.respondTransitionError(c, orderID, err, "Acceptation")
		return
	}

	publishOrderEvent(order.UserID, "confirmed", order)

	log.Printf("✅ Commande acceptée: %s", orderID)
	c.JSON(http.StatusOK, order)
}

// RejectOrder refuse une commande pending et restitue le stock réservé
func (h *OrderHandler) RejectOrder(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	order, err := h.Svc.Reject(c.Request.Context(), orderID, c.GetString("role"))
	if err != nil {
		h.respondTransitionError(c, orderID, err, "Refus")
		return
	}

	publishOrderEvent(order.UserID, "cancelled", order)

	log.Printf("🔄 Commande refusée: %s (stock restitué)", orderID)
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) respondTransitionError(c *gin.Context, orderID gocql.UUID, err error, action string) {
	var invalid *orders.InvalidTransitionError
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
	case errors.Is(err, orders.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
	case errors.As(err, &invalid):
		c.JSON(http.StatusConflict, gin.H{
			"error":          action + " impossible dans cet état",
			"current_status": invalid.Current,
		})
	default:
		log.Printf("❌ Erreur transition %s: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour commande"})
	}
}
