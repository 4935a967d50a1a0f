package seeder

import "github.com/google/uuid"

// Defaults returns the seeders used for a local demo account.
func Defaults(userID uuid.UUID) []Seeder {
	return []Seeder{
		DemoRecipesSeeder{UserID: userID},
	}
}
