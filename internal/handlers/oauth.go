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
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

// withProvider recopie le provider du path dans la query, là où gothic le cherche
func withProvider(c *gin.Context, provider string) {
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
}

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	withProvider(c, provider)
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	withProvider(c, provider)

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, role, err := upsertOAuthUser(gothUser)
	if err != nil {
		log.Printf("❌ Erreur upsert utilisateur OAuth: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateAccessToken(userID, gothUser.Email, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"userId":   userID,
		"email":    gothUser.Email,
		"provider": gothUser.Provider,
		"role":     role,
	})
}

// upsertOAuthUser retrouve l'utilisateur par email ou le crée au premier login social
func upsertOAuthUser(gothUser goth.User) (string, string, error) {
	stmtID, err := database.GetPreparedGetUserIDByEmail()
	if err != nil {
		return "", "", err
	}

	var existingID gocql.UUID
	if err := stmtID.Bind(gothUser.Email).Scan(&existingID); err == nil {
		stmtUser, err := database.GetPreparedGetUserByID()
		if err != nil {
			return "", "", err
		}
		var email, password, name, role, provider, providerID string
		if err := stmtUser.Bind(existingID).Scan(&email, &password, &name, &role, &provider, &providerID); err != nil {
			return "", "", err
		}

		// Premier login social sur un compte existant : on lie le provider
		// et on invalide le profil mis en cache
		if provider != gothUser.Provider {
			session, err := database.GetUsersSession()
			if err == nil {
				if err := session.Query(`UPDATE users SET provider = ?, provider_id = ? WHERE user_id = ?`,
					gothUser.Provider, gothUser.UserID, existingID).Exec(); err != nil {
					log.Printf("⚠️ Liaison provider %s impossible pour %s: %v", gothUser.Provider, existingID, err)
				} else {
					cache.InvalidateUserCache(existingID.String())
				}
			}
		}

		return existingID.String(), role, nil
	}

	userID := gocql.TimeUUID()
	now := time.Now().UTC()

	insertUser, err := database.GetPreparedInsertUser()
	if err != nil {
		return "", "", err
	}
	name := gothUser.Name
	if name == "" {
		name = gothUser.NickName
	}
	if err := insertUser.Bind(userID, gothUser.Email, "", name,
		models.RoleUser, gothUser.Provider, gothUser.UserID, now).Exec(); err != nil {
		return "", "", err
	}

	insertByEmail, err := database.GetPreparedInsertUserByEmail()
	if err == nil {
		if err := insertByEmail.Bind(gothUser.Email, userID).Exec(); err != nil {
			log.Printf("⚠️ Erreur insertion users_by_email: %v", err)
		}
	}

	log.Printf("✅ Utilisateur OAuth créé: %s via %s", gothUser.Email, gothUser.Provider)
	return userID.String(), models.RoleUser, nil
}
