package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

// Requêtes chaudes du keyspace users. gocql prépare et met en cache chaque
// statement côté serveur à la première exécution ; les accesseurs retournent
// une query fraîche pour éviter tout Bind partagé entre goroutines.
const (
	cqlGetUserIDByEmail = "SELECT user_id FROM users_by_email WHERE email = ?"

	cqlGetUserByID = `SELECT email, password, name, role, provider, provider_id
		FROM users WHERE user_id = ?`

	cqlInsertUser = `INSERT INTO users (user_id, email, password, name, role, provider, provider_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	cqlInsertUserByEmail = "INSERT INTO users_by_email (email, user_id) VALUES (?, ?)"
)

var preparedOnce sync.Once

// InitPreparedStatements vérifie la session users au démarrage pour éviter la
// latence du premier appel.
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		if _, err := GetUsersSession(); err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements : %v", err)
			return
		}
		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserIDByEmail() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlGetUserIDByEmail), nil
}

func GetPreparedGetUserByID() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlGetUserByID), nil
}

func GetPreparedInsertUser() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlInsertUser), nil
}

func GetPreparedInsertUserByEmail() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlInsertUserByEmail), nil
}
