package handlers

import (
	"log"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"officine_back_end/internal/database"
	"officine_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// ================== PHARMACIES ==================

func CreatePharmacy(c *gin.Context) {
	var input struct {
		Name       string  `json:"name" binding:"required"`
		Address    string  `json:"address" binding:"required"`
		City       string  `json:"city" binding:"required"`
		PostalCode string  `json:"postal_code"`
		Phone      string  `json:"phone"`
		Email      string  `json:"email"`
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	pharmacy := models.Pharmacy{
		ID:         gocql.TimeUUID(),
		Name:       input.Name,
		Address:    input.Address,
		City:       input.City,
		PostalCode: input.PostalCode,
		Phone:      input.Phone,
		Email:      input.Email,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		CreatedAt:  time.Now().UTC(),
	}

	err = session.Query(`INSERT INTO pharmacies (pharmacy_id, name, address, city, postal_code, phone, email, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pharmacy.ID, pharmacy.Name, pharmacy.Address, pharmacy.City, pharmacy.PostalCode,
		pharmacy.Phone, pharmacy.Email, pharmacy.Latitude, pharmacy.Longitude, pharmacy.CreatedAt).Exec()
	if err != nil {
		log.Printf("❌ Erreur création pharmacie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création pharmacie"})
		return
	}

	log.Printf("✅ Pharmacie créée: %s (%s)", pharmacy.Name, pharmacy.ID)
	c.JSON(http.StatusCreated, pharmacy)
}

func GetAllPharmacies(c *gin.Context) {
	pharmacies, err := loadAllPharmacies()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération pharmacies"})
		return
	}
	c.JSON(http.StatusOK, pharmacies)
}

func GetPharmacy(c *gin.Context) {
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

	var p models.Pharmacy
	p.ID = id
	err = session.Query(`SELECT name, address, city, postal_code, phone, email, latitude, longitude, created_at
		FROM pharmacies WHERE pharmacy_id = ?`, id).Scan(
		&p.Name, &p.Address, &p.City, &p.PostalCode, &p.Phone, &p.Email, &p.Latitude, &p.Longitude, &p.CreatedAt)
	if err == gocql.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pharmacie introuvable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération pharmacie"})
		return
	}

	c.JSON(http.StatusOK, p)
}

func UpdatePharmacy(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant invalide"})
		return
	}

	var input struct {
		Name       string  `json:"name" binding:"required"`
		Address    string  `json:"address" binding:"required"`
		City       string  `json:"city" binding:"required"`
		PostalCode string  `json:"postal_code"`
		Phone      string  `json:"phone"`
		Email      string  `json:"email"`
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base produits indisponible"})
		return
	}

	err = session.Query(`UPDATE pharmacies SET name = ?, address = ?, city = ?, postal_code = ?, phone = ?, email = ?, latitude = ?, longitude = ?
		WHERE pharmacy_id = ?`,
		input.Name, input.Address, input.City, input.PostalCode, input.Phone, input.Email,
		input.Latitude, input.Longitude, id).Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour pharmacie"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pharmacie mise à jour"})
}

func DeletePharmacy(c *gin.Context) {
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

	if err := session.Query(`DELETE FROM pharmacies WHERE pharmacy_id = ?`, id).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression pharmacie"})
		return
	}

	log.Printf("✅ Pharmacie supprimée: %s", id)
	c.JSON(http.StatusOK, gin.H{"message": "Pharmacie supprimée"})
}

// GetNearbyPharmacies trie les pharmacies par distance (haversine) depuis lat/lng
func GetNearbyPharmacies(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres lat et lng requis"})
		return
	}

	radiusKm := 10.0
	if r, err := strconv.ParseFloat(c.Query("radius"), 64); err == nil && r > 0 {
		radiusKm = r
	}

	pharmacies, err := loadAllPharmacies()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération pharmacies"})
		return
	}

	type nearbyPharmacy struct {
		models.Pharmacy
		DistanceKm float64 `json:"distance_km"`
	}

	nearby := []nearbyPharmacy{}
	for _, p := range pharmacies {
		d := haversineKm(lat, lng, p.Latitude, p.Longitude)
		if d <= radiusKm {
			nearby = append(nearby, nearbyPharmacy{Pharmacy: p, DistanceKm: math.Round(d*100) / 100})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})

	c.JSON(http.StatusOK, nearby)
}

func loadAllPharmacies() ([]models.Pharmacy, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT pharmacy_id, name, address, city, postal_code, phone, email, latitude, longitude, created_at
		FROM pharmacies`).Iter()

	pharmacies := []models.Pharmacy{}
	var p models.Pharmacy
	for iter.Scan(&p.ID, &p.Name, &p.Address, &p.City, &p.PostalCode, &p.Phone, &p.Email, &p.Latitude, &p.Longitude, &p.CreatedAt) {
		pharmacies = append(pharmacies, p)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return pharmacies, nil
}

// haversineKm calcule la distance en kilomètres entre deux points GPS
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
