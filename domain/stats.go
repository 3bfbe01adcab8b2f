package domain

// CaloriePair is the pair of distinct recipes whose calorie values are
// closest. RecipeA is always the smaller id. Calorie values and the
// difference are rounded to 2 decimal places.
type CaloriePair struct {
	RecipeA    int64   `json:"recipe_a"`
	RecipeB    int64   `json:"recipe_b"`
	CaloriesA  float64 `json:"calories_a"`
	CaloriesB  float64 `json:"calories_b"`
	Difference float64 `json:"difference"`
}

// RecipeComplexity is a recipe ranked by its ingredient count.
type RecipeComplexity struct {
	RecipeID        int64  `json:"recipe_id"`
	Name            string `json:"name"`
	IngredientCount int    `json:"ingredient_count"`
}

// FollowRatio is the user maximizing followerCount / followeeCount.
type FollowRatio struct {
	UserID int64   `json:"user_id"`
	Name   string  `json:"name"`
	Ratio  float64 `json:"ratio"`
}

// StatsService runs the one-shot analytical queries over the whole
// dataset. All three are read-only full scans with deterministic
// tie-breaking.
type StatsService interface {
	// ClosestCaloriePair returns nil when fewer than two recipes have
	// calorie data.
	ClosestCaloriePair() (*CaloriePair, error)
	// MostComplexRecipes returns up to three recipes by descending
	// ingredient count; recipes without ingredients are excluded.
	MostComplexRecipes() ([]*RecipeComplexity, error)
	// HighestFollowRatio returns nil when no live user has a nonzero
	// followee count.
	HighestFollowRatio() (*FollowRatio, error)
}
