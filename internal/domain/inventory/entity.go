// Package inventory holds the pantry and meal-planning records. They are
// stored and served by the wider app; the scraping pipeline only shares
// the recipe ids with them.
package inventory

import (
	"time"

	"github.com/google/uuid"
)

type Collection struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	RecipeIDs   []uuid.UUID `json:"recipe_ids"`
	CreatedAt   time.Time   `json:"created_at"`
}

type FoodItem struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	Quantity  *float64   `json:"quantity"`
	Unit      *string    `json:"unit"`
	Category  *string    `json:"category"`
	ExpiresOn *time.Time `json:"expires_on"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type ShoppingListItem struct {
	Name     string   `json:"name"`
	Quantity *float64 `json:"quantity"`
	Unit     *string  `json:"unit"`
	Checked  bool     `json:"checked"`
}

type ShoppingList struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Name      string             `json:"name"`
	Items     []ShoppingListItem `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
}

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

type MealPlan struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	RecipeID  *uuid.UUID `json:"recipe_id"`
	Date      time.Time  `json:"date"`
	MealType  MealType   `json:"meal_type"`
	CreatedAt time.Time  `json:"created_at"`
}
