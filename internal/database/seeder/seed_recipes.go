package seeder

import (
	"context"
	"encoding/json"
	"fmt"

	"recipe-sync/internal/database"
	"recipe-sync/internal/domain/recipe"

	"github.com/google/uuid"
)

// DemoRecipesSeeder gives a user a few manually entered recipes. Ids are
// derived from the user and title so reruns insert nothing new.
type DemoRecipesSeeder struct {
	UserID uuid.UUID
}

func (DemoRecipesSeeder) Name() string { return "demo_recipes" }

type demoRecipe struct {
	Title        string
	Description  string
	Ingredients  []string
	Instructions []string
	Servings     int
	Difficulty   recipe.Difficulty
	Tags         []string
}

var demoRecipes = []demoRecipe{
	{
		Title:        "Overnight oats",
		Description:  "No-cook breakfast prepared the evening before.",
		Ingredients:  []string{"1 cup rolled oats", "1 cup milk", "1 tbsp chia seeds", "honey"},
		Instructions: []string{"Mix everything in a jar.", "Refrigerate overnight."},
		Servings:     1,
		Difficulty:   recipe.DifficultyEasy,
		Tags:         []string{"breakfast", "vegetarian"},
	},
	{
		Title:        "Tomato soup",
		Ingredients:  []string{"1 kg tomatoes", "1 onion", "2 cloves garlic", "500 ml stock"},
		Instructions: []string{"Soften onion and garlic.", "Add tomatoes and stock, simmer 20 minutes.", "Blend."},
		Servings:     4,
		Difficulty:   recipe.DifficultyMedium,
		Tags:         []string{"soup"},
	},
}

func (s DemoRecipesSeeder) Run(ctx context.Context, db database.DB) error {
	if s.UserID == uuid.Nil {
		return fmt.Errorf("empty user id")
	}
	if err := database.EnsureTableColumns(ctx, db, "recipes", database.RequiredColumns["recipes"]...); err != nil {
		return err
	}

	return database.InTx(ctx, db, func(tx database.Tx) error {
		for _, r := range demoRecipes {
			ingredients, err := json.Marshal(r.Ingredients)
			if err != nil {
				return err
			}
			instructions, err := json.Marshal(r.Instructions)
			if err != nil {
				return err
			}

			var description *string
			if r.Description != "" {
				description = &r.Description
			}

			if _, err := tx.Exec(
				ctx,
				`INSERT INTO recipes (id, user_id, title, description, source_platform, ingredients, instructions, servings, difficulty, tags)
				 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8, $9, $10)
				 ON CONFLICT (id) DO NOTHING`,
				demoRecipeID(s.UserID, r.Title),
				s.UserID,
				r.Title,
				description,
				"manual",
				string(ingredients),
				string(instructions),
				r.Servings,
				string(r.Difficulty),
				r.Tags,
			); err != nil {
				return fmt.Errorf("insert %q: %w", r.Title, err)
			}
		}
		return nil
	})
}

func demoRecipeID(userID uuid.UUID, title string) uuid.UUID {
	return uuid.NewSHA1(userID, []byte(title))
}
