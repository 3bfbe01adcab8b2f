package domain

import "time"

// Recipe is a published recipe. The three duration fields hold ISO-8601
// duration strings (see duration.go); TotalTime is kept equal to
// CookTime + PrepTime by the crud service.
//
// AggregatedRating and ReviewCount are derived from the recipe's reviews
// and recomputed in the same transaction as every review mutation.
// AggregatedRating is nil while the recipe has no reviews.
type Recipe struct {
	ID         int64  `json:"id"`
	Name       string `json:"name" gorm:"not null"`
	AuthorID   int64  `json:"author_id" gorm:"not null;index"`
	AuthorName string `json:"author_name,omitempty" gorm:"-"`

	CookTime      string    `json:"cook_time"`
	PrepTime      string    `json:"prep_time"`
	TotalTime     string    `json:"total_time"`
	DatePublished time.Time `json:"date_published"`
	Description   string    `json:"description"`
	Category      string    `json:"category" gorm:"index"`

	Calories     *float64 `json:"calories"`
	Fat          float64  `json:"fat" gorm:"not null;default:0"`
	SaturatedFat float64  `json:"saturated_fat" gorm:"not null;default:0"`
	Cholesterol  float64  `json:"cholesterol" gorm:"not null;default:0"`
	Sodium       float64  `json:"sodium" gorm:"not null;default:0"`
	Carbohydrate float64  `json:"carbohydrate" gorm:"not null;default:0"`
	Fiber        float64  `json:"fiber" gorm:"not null;default:0"`
	Sugar        float64  `json:"sugar" gorm:"not null;default:0"`
	Protein      float64  `json:"protein" gorm:"not null;default:0"`

	Servings int    `json:"servings"`
	Yield    string `json:"yield"`

	AggregatedRating *float64 `json:"aggregated_rating"`
	ReviewCount      int      `json:"review_count" gorm:"not null;default:0"`

	// Ingredient texts in case-insensitive lexical order,
	// attached on read. Stored in the ingredients table.
	Ingredients []string `json:"ingredients,omitempty" gorm:"-"`
}

// Ingredient is a (recipe, ingredient text) membership pair. Pairs are
// unique; storage is case-sensitive but deduplication and read ordering
// are case-insensitive.
type Ingredient struct {
	RecipeID   int64  `json:"recipe_id" gorm:"primaryKey;autoIncrement:false"`
	Ingredient string `json:"ingredient" gorm:"primaryKey"`
}

// RecipeFilter is the conjunctive predicate for recipe search. Nil fields
// are not applied. Keyword matches name or description as a
// case-insensitive substring; Category matches exactly.
type RecipeFilter struct {
	Keyword   *string  `json:"keyword"`
	Category  *string  `json:"category"`
	MinRating *float64 `json:"min_rating"`
}

// FeedItem is one entry of a user's recipe feed.
type FeedItem struct {
	RecipeID         int64     `json:"recipe_id"`
	Name             string    `json:"name"`
	AuthorID         int64     `json:"author_id"`
	AuthorName       string    `json:"author_name"`
	DatePublished    time.Time `json:"date_published"`
	AggregatedRating *float64  `json:"aggregated_rating"`
	ReviewCount      int       `json:"review_count"`
}

// RecipeService is a set of methods to manipulate and work with the Recipe model.
type RecipeService interface {
	ByID(id int64) (*Recipe, error)
	Create(auth *AuthInfo, recipe *Recipe) (int64, error)
	Delete(auth *AuthInfo, recipeID int64) error
	// UpdateTimes sets the cook and/or prep duration from ISO-8601 strings,
	// recomputing the total. A nil side keeps the stored value.
	UpdateTimes(auth *AuthInfo, recipeID int64, cookISO, prepISO *string) error
	Search(filter RecipeFilter, sort string, page Page) (*PageResult[*Recipe], error)
	Feed(auth *AuthInfo, category *string, page Page) (*PageResult[*FeedItem], error)
}
