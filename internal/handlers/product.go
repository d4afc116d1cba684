package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"officine_back_end/internal/cache"
	"officine_back_end/internal/database"
	"officine_back_end/internal/models"
	"officine_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const allProductsCacheKey = "products:all"

// ================== PRODUITS ==================

func CreateProduct(c *gin.Context) {
	var input struct {
		PharmacyID  string  `json:"pharmacy_id" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Category    string  `json:"category" binding:"required"`
		Price       float64 `json:"price" binding:"gte=0"`
		Quantity    int     `json:"quantity" binding:"gte=0"`
		Dosage      string  `json:"dosage"`
		ExpiryDate  string  `json:"expiry_date"`
		Description string  `json:"description"`
		HealthInfo  string  `json:"health_info"`
		Usage       string  `json:"usage"`
		SideEffects string  `json:"side_effects"`
		ImageURL    string  `json:"image_url"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.IsValidCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie invalide", "category": input.Category})
		return
	}

	pharmacyID, err := gocql.ParseUUID(input.PharmacyID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pharmacy_id invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	// La pharmacie doit exister
	var pharmacyName string
	err = session.Query(`SELECT name FROM pharmacies WHERE pharmacy_id = ?`, pharmacyID).Scan(&pharmacyName)
	if err == gocql.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pharmacie introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification pharmacie"})
		return
	}

	now := time.Now().UTC()
	product := models.Product{
		ID:          gocql.TimeUUID(),
		PharmacyID:  pharmacyID,
		Name:        input.Name,
		Category:    input.Category,
		Price:       input.Price,
		Quantity:    input.Quantity,
		Dosage:      input.Dosage,
		ExpiryDate:  input.ExpiryDate,
		Description: input.Description,
		HealthInfo:  input.HealthInfo,
		Usage:       input.Usage,
		SideEffects: input.SideEffects,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = session.Query(`INSERT INTO products (product_id, pharmacy_id, name, category, price, quantity, dosage, expiry_date, description, health_info, usage, side_effects, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.PharmacyID, product.Name, product.Category, product.Price, product.Quantity,
		product.Dosage, product.ExpiryDate, product.Description, product.HealthInfo, product.Usage,
		product.SideEffects, product.ImageURL, product.CreatedAt, product.UpdatedAt).Exec()
	if err != nil {
		log.Printf("❌ Erreur création produit: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// Table de lookup par pharmacie
	err = session.Query(`INSERT INTO products_by_pharmacy (pharmacy_id, product_id) VALUES (?, ?)`,
		product.PharmacyID, product.ID).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur insertion products_by_pharmacy: %v", err)
	}

	cache.InvalidateProductList()
	go services.IndexProduct(product)

	log.Printf("✅ Produit créé: %s (%s)", product.Name, product.ID)
	c.JSON(http.StatusCreated, product)
}

func UpdateProduct(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	var input struct {
		Name        *string  `json:"name"`
		Category    *string  `json:"category"`
		Price       *float64 `json:"price"`
		Dosage      *string  `json:"dosage"`
		ExpiryDate  *string  `json:"expiry_date"`
		Description *string  `json:"description"`
		HealthInfo  *string  `json:"health_info"`
		Usage       *string  `json:"usage"`
		SideEffects *string  `json:"side_effects"`
		ImageURL    *string  `json:"image_url"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Category != nil && !models.IsValidCategory(*input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie invalide", "category": *input.Category})
		return
	}
	if input.Price != nil && *input.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le prix ne peut pas être négatif"})
		return
	}

	// Construction dynamique de la requête selon les champs fournis
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	addSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if input.Name != nil {
		addSet("name", *input.Name)
	}
	if input.Category != nil {
		addSet("category", *input.Category)
	}
	if input.Price != nil {
		addSet("price", *input.Price)
	}
	if input.Dosage != nil {
		addSet("dosage", *input.Dosage)
	}
	if input.ExpiryDate != nil {
		addSet("expiry_date", *input.ExpiryDate)
	}
	if input.Description != nil {
		addSet("description", *input.Description)
	}
	if input.HealthInfo != nil {
		addSet("health_info", *input.HealthInfo)
	}
	if input.Usage != nil {
		addSet("usage", *input.Usage)
	}
	if input.SideEffects != nil {
		addSet("side_effects", *input.SideEffects)
	}
	if input.ImageURL != nil {
		addSet("image_url", *input.ImageURL)
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	query := fmt.Sprintf("UPDATE products SET %s WHERE product_id = ?", strings.Join(sets, ", "))
	args = append(args, id)

	if err := session.Query(query, args...).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour produit %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	cache.InvalidateProductCache(id.String())
	cache.InvalidateProductList()

	// Réindexer la version à jour
	if product, err := loadProduct(session, id); err == nil {
		go services.IndexProduct(*product)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Produit mis à jour"})
}

func DeleteProduct(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	product, err := loadProduct(session, id)
	if err == gocql.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, id).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}
	if err := session.Query(`DELETE FROM products_by_pharmacy WHERE pharmacy_id = ? AND product_id = ?`,
		product.PharmacyID, id).Exec(); err != nil {
		log.Printf("⚠️ Erreur suppression products_by_pharmacy: %v", err)
	}

	cache.InvalidateProductCache(id.String())
	cache.InvalidateProductList()
	go services.DeleteProductIndex(id.String())

	log.Printf("✅ Produit supprimé: %s", id)
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

func GetAllProducts(c *gin.Context) {
	ctx := context.Background()

	// 1. Essayer le cache Redis
	if data, err := database.Redis.Get(ctx, allProductsCacheKey).Result(); err == nil {
		var products []models.Product
		if json.Unmarshal([]byte(data), &products) == nil {
			c.JSON(http.StatusOK, products)
			return
		}
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	iter := session.Query(`SELECT product_id, pharmacy_id, name, category, price, quantity, dosage, expiry_date, description, health_info, usage, side_effects, image_url, created_at, updated_at
		FROM products`).Iter()

	products := []models.Product{}
	var p models.Product
	for iter.Scan(&p.ID, &p.PharmacyID, &p.Name, &p.Category, &p.Price, &p.Quantity, &p.Dosage,
		&p.ExpiryDate, &p.Description, &p.HealthInfo, &p.Usage, &p.SideEffects, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt) {
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produits"})
		return
	}

	// 2. Mettre en cache
	if data, err := json.Marshal(products); err == nil {
		database.Redis.Set(ctx, allProductsCacheKey, data, cache.ProductCacheTTL)
	}

	c.JSON(http.StatusOK, products)
}

func GetProduct(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	product, err := loadProduct(session, id)
	if err == gocql.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	// Image servie via URL signée à expiration ; en cas d'échec on garde
	// l'URL brute du bucket
	if product.ImageURL != "" {
		if signed, err := services.GenerateSignedURL(c.Request.Context(), product.ImageURL, time.Hour); err == nil {
			product.ImageURL = signed
		}
	}

	c.JSON(http.StatusOK, product)
}

func GetProductsByPharmacy(c *gin.Context) {
	pharmacyID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	iter := session.Query(`SELECT product_id FROM products_by_pharmacy WHERE pharmacy_id = ?`, pharmacyID).Iter()

	products := []models.Product{}
	var productID gocql.UUID
	for iter.Scan(&productID) {
		if p, err := loadProduct(session, productID); err == nil {
			products = append(products, *p)
		}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produits"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"results": []interface{}{}, "message": "Aucun résultat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

func UploadProductImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image requis"})
		return
	}

	url, err := services.UploadProductImage(c.Request.Context(), file)
	if err != nil {
		log.Printf("❌ Erreur upload image: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	log.Printf("📤 Image uploadée: %s", url)
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func loadProduct(session *gocql.Session, id gocql.UUID) (*models.Product, error) {
	var p models.Product
	p.ID = id
	err := session.Query(`SELECT pharmacy_id, name, category, price, quantity, dosage, expiry_date, description, health_info, usage, side_effects, image_url, created_at, updated_at
		FROM products WHERE product_id = ?`, id).Scan(
		&p.PharmacyID, &p.Name, &p.Category, &p.Price, &p.Quantity, &p.Dosage, &p.ExpiryDate,
		&p.Description, &p.HealthInfo, &p.Usage, &p.SideEffects, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
