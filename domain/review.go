package domain

import "time"

// Review is a rating plus free text left on a recipe. Only its author may
// edit or delete it; deletion cascades its likes. Rating is an integer in
// [1,5].
type Review struct {
	ID       int64  `json:"id"`
	RecipeID int64  `json:"recipe_id" gorm:"not null;index"`
	AuthorID int64  `json:"author_id" gorm:"not null"`
	Rating   int    `json:"rating" gorm:"not null"`
	Body     string `json:"review"`

	DateSubmitted time.Time `json:"date_submitted"`
	DateModified  time.Time `json:"date_modified"`

	AuthorName string `json:"author_name,omitempty" gorm:"-"`
	// Ids of the users currently liking this review, ascending,
	// attached on read.
	LikerIDs []int64 `json:"liker_ids,omitempty" gorm:"-"`
}

// ReviewService is a set of methods to manipulate and work with the Review
// model. Every mutation recomputes the owning recipe's aggregated rating
// and review count inside the same transaction.
type ReviewService interface {
	Create(auth *AuthInfo, recipeID int64, rating int, body string) (int64, error)
	Edit(auth *AuthInfo, recipeID, reviewID int64, rating int, body string) error
	Delete(auth *AuthInfo, recipeID, reviewID int64) error
	ByRecipe(recipeID int64, sort string, page Page) (*PageResult[*Review], error)
	// RefreshAggregate recomputes the recipe's review count and rating and
	// returns the full current recipe snapshot.
	RefreshAggregate(recipeID int64) (*Recipe, error)
}
