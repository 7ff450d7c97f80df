package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsDuplicateKeyError(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	assert.True(t, isDuplicateKeyError(dup))
	assert.True(t, isDuplicateKeyError(fmt.Errorf("insert: %w", dup)))

	other := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{{Code: 121, Message: "Document failed validation"}},
	}
	assert.False(t, isDuplicateKeyError(other))
	assert.False(t, isDuplicateKeyError(errors.New("mongo down")))
	assert.False(t, isDuplicateKeyError(nil))
}

func TestHashTokenIsStableAndOpaque(t *testing.T) {
	h := hashToken("refresh-token-value")
	assert.Len(t, h, 64)
	assert.Equal(t, h, hashToken("refresh-token-value"))
	assert.NotEqual(t, h, hashToken("other-token"))
	assert.NotContains(t, h, "refresh")
}
