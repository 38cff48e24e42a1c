package identity

import (
	models "Sweatmate/models/postgres"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// Resolver labels events with a user's display name. It must never block a
// state transition: lookups that fail degrade to a placeholder and the real
// name catches up on a later broadcast.
type Resolver interface {
	DisplayName(userID string) string
}

// PlaceholderName is the degraded label used when the lookup fails.
func PlaceholderName(userID string) string {
	return fmt.Sprintf("User %s", userID)
}

// DBResolver resolves display names from the users table.
type DBResolver struct {
	db *gorm.DB
}

func NewDBResolver(db *gorm.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) DisplayName(userID string) string {
	var user models.User
	if err := r.db.Where("id = ?", userID).First(&user).Error; err != nil {
		log.Printf("[IDENTITY] Could not resolve display name for %s: %v", userID, err)
		return PlaceholderName(userID)
	}
	if user.DisplayName == "" {
		return PlaceholderName(userID)
	}
	return user.DisplayName
}
