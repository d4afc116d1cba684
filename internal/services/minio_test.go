package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	key := objectKey("http://minio.local:9000/officine-images/abc123.png",
		"minio.local:9000", "officine-images")
	assert.Equal(t, "abc123.png", key)

	// Une clé déjà relative passe sans modification
	assert.Equal(t, "abc123.png", objectKey("abc123.png", "minio.local:9000", "officine-images"))

	// Une URL d'un autre hôte n'est pas tronquée
	other := "http://cdn.example.com/officine-images/abc123.png"
	assert.Equal(t, other, objectKey(other, "minio.local:9000", "officine-images"))
}
