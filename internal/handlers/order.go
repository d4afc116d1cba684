package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"officine_back_end/internal/cache"
	"officine_back_end/internal/cart"
	"officine_back_end/internal/database"
	"officine_back_end/internal/models"
	"officine_back_end/internal/orders"
	"officine_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type OrderHandler struct {
	Svc   *orders.Service
	Carts *cart.Store
}

func NewOrderHandler(svc *orders.Service, carts *cart.Store) *OrderHandler {
	return &OrderHandler{Svc: svc, Carts: carts}
}

// OrderChannel est le canal pub/sub des événements de commande d'un utilisateur
func OrderChannel(userID string) string { return "orders:" + userID }

// Checkout transforme le panier en commande. Tout ou rien : au moindre stock
// insuffisant, aucune réservation ne survit et le panier reste intact.
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID := c.GetString("user_id")

	items, err := h.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération panier"})
		return
	}

	order, err := h.Svc.Checkout(c.Request.Context(), userID, items)
	if err != nil {
		var unavailable *orders.StockUnavailableError
		switch {
		case errors.Is(err, orders.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le panier est vide"})
		case errors.Is(err, orders.ErrInvalidLine):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ligne de panier invalide"})
		case errors.As(err, &unavailable):
			c.JSON(http.StatusConflict, gin.H{
				"error":        "Stock insuffisant pour certains produits",
				"failed_items": unavailable.Lines,
			})
		case errors.Is(err, orders.ErrStoreUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporairement indisponible"})
		default:
			log.Printf("❌ Erreur checkout pour %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commande"})
		}
		return
	}

	// Le panier n'est vidé qu'une fois la commande persistée
	if err := h.Carts.Clear(c.Request.Context(), userID); err != nil {
		log.Printf("⚠️ Panier non vidé après checkout %s: %v", order.ID, err)
	}

	publishOrderEvent(userID, "created", order)
	go sendOrderConfirmation(order)

	log.Printf("🧾 Commande créée: %s pour %s (%.2f€)", order.ID, userID, order.TotalAmount)
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	list, err := h.Svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	order, err := h.Svc.Get(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commande"})
		return
	}

	// Une commande n'est visible que par son propriétaire ou un admin
	if order.UserID != c.GetString("user_id") && c.GetString("role") != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelOrder annule une commande pending et restitue le stock réservé
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	userID := c.GetString("user_id")

	order, err := h.Svc.Cancel(c.Request.Context(), orderID, userID)
	if err != nil {
		var invalid *orders.InvalidTransitionError
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		case errors.Is(err, orders.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		case errors.As(err, &invalid):
			c.JSON(http.StatusConflict, gin.H{
				"error":          "Annulation impossible dans cet état",
				"current_status": invalid.Current,
			})
		default:
			log.Printf("❌ Erreur annulation %s: %v", orderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation commande"})
		}
		return
	}

	publishOrderEvent(order.UserID, "cancelled", order)

	log.Printf("🔄 Commande annulée: %s (stock restitué)", orderID)
	c.JSON(http.StatusOK, order)
}

// publishOrderEvent pousse l'événement sur Redis pour le suivi temps réel
func publishOrderEvent(userID, event string, order *models.Order) {
	payload, err := json.Marshal(gin.H{
		"event":    event,
		"order_id": order.ID.String(),
		"status":   order.Status,
	})
	if err != nil {
		return
	}
	database.Redis.Publish(context.Background(), OrderChannel(userID), payload)
}

// sendOrderConfirmation envoie l'e-mail de confirmation avec QR de retrait et
// reçu PDF. Lancé en goroutine : un échec n'affecte jamais le checkout.
func sendOrderConfirmation(order *models.Order) {
	user, err := cache.GetUserFromCache(order.UserID)
	if err != nil || user.Email == "" {
		log.Printf("⚠️ E-mail de confirmation non envoyé pour %s: utilisateur introuvable", order.ID)
		return
	}

	qrDataURI, err := utils.GeneratePickupQR(order)
	if err != nil {
		log.Printf("⚠️ QR de retrait non généré pour %s: %v", order.ID, err)
		qrDataURI = ""
	}

	var pdf []byte
	if pdfBuf, err := utils.RenderReceiptPDF(order.ID.String()); err == nil {
		pdf = pdfBuf
	} else {
		log.Printf("⚠️ Reçu PDF non généré pour %s: %v", order.ID, err)
	}

	html := utils.BuildOrderConfirmationHTML(order, qrDataURI)
	if err := utils.SendOrderEmail(user.Email, "Votre commande est confirmée", html, pdf); err != nil {
		log.Printf("⚠️ E-mail de confirmation non envoyé pour %s: %v", order.ID, err)
		return
	}

	log.Printf("📤 E-mail de confirmation envoyé pour %s", order.ID)
}
