package handlers

import (
	"log"
	"net/http"
	"time"

	"officine_back_end/internal/cache"
	"officine_back_end/internal/database"
	"officine_back_end/internal/models"
	"officine_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Vérifier si l'email existe déjà
	stmt, err := database.GetPreparedGetUserIDByEmail()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base utilisateurs indisponible"})
		return
	}

	var existingID gocql.UUID
	if err := stmt.Bind(input.Email).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Un compte avec cet email existe déjà",
			"email": input.Email,
		})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
		return
	}

	userID := gocql.TimeUUID()
	now := time.Now().UTC()

	insertUser, err := database.GetPreparedInsertUser()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base utilisateurs indisponible"})
		return
	}

	if err := insertUser.Bind(userID, input.Email, hashedPassword, input.Name,
		models.RoleUser, "local", "", now).Exec(); err != nil {
		log.Printf("❌ Erreur insertion utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	insertByEmail, err := database.GetPreparedInsertUserByEmail()
	if err == nil {
		if err := insertByEmail.Bind(input.Email, userID).Exec(); err != nil {
			log.Printf("⚠️ Erreur insertion users_by_email: %v", err)
		}
	}

	log.Printf("✅ Utilisateur créé: %s (%s)", input.Email, userID)

	c.JSON(http.StatusCreated, gin.H{
		"id":    userID.String(),
		"email": input.Email,
		"name":  input.Name,
		"role":  models.RoleUser,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stmtID, err := database.GetPreparedGetUserIDByEmail()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base utilisateurs indisponible"})
		return
	}

	var userID gocql.UUID
	if err := stmtID.Bind(input.Email).Scan(&userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	stmtUser, err := database.GetPreparedGetUserByID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Base utilisateurs indisponible"})
		return
	}

	var email, password, name, role, provider, providerID string
	if err := stmtUser.Bind(userID).Scan(&email, &password, &name, &role, &provider, &providerID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateAccessToken(userID.String(), email, role)
	if err != nil {
		log.Printf("❌ Erreur génération token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": userID.String(),
		"name":   name,
		"email":  email,
		"role":   role,
	})
}

// Me retourne le profil de l'utilisateur connecté (via cache Redis)
func Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"role":     user.Role,
		"provider": user.Provider,
	})
}
