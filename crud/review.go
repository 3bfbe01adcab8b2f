package crud

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"tastebook/domain"
	"tastebook/errs"
)

// ReviewService manages Reviews. Every review mutation recomputes the
// owning recipe's aggregated rating and review count within the same
// transaction, so readers never observe the counters disagreeing with the
// review set. It implements the domain.ReviewService interface.
type ReviewService struct {
	reviewValidator
}

// reviewValidator runs validations on incoming Review data.
// On success, it passes the data on to reviewGorm.
// Otherwise, it returns the error of the validation that has failed.
type reviewValidator struct {
	reviewGorm
}

// reviewGorm runs CRUD operations on the database using incoming Review
// data. It assumes that data has been validated.
type reviewGorm struct {
	db *gorm.DB
}

// NewReviewService returns an instance of ReviewService.
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		reviewValidator{
			reviewGorm{
				db: db,
			},
		},
	}
}

// Ensure the ReviewService struct properly implements the domain.ReviewService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ReviewService = &ReviewService{}

// Create authenticates the caller and adds a review to an existing
// recipe.
func (rv *reviewValidator) Create(auth *domain.AuthInfo, recipeID int64, rating int, body string) (int64, error) {
	authorID, err := authenticate(rv.db, auth)
	if err != nil {
		return 0, err
	}
	if err := rv.recipeExists(recipeID); err != nil {
		return 0, err
	}
	if err := ratingInRange(rating); err != nil {
		return 0, err
	}
	review := &domain.Review{
		RecipeID: recipeID,
		AuthorID: authorID,
		Rating:   rating,
		Body:     body,
	}
	if err := rv.reviewGorm.Create(review); err != nil {
		return 0, err
	}
	return review.ID, nil
}

// Edit authenticates the caller and updates their own review in place.
func (rv *reviewValidator) Edit(auth *domain.AuthInfo, recipeID, reviewID int64, rating int, body string) error {
	authorID, err := authenticate(rv.db, auth)
	if err != nil {
		return err
	}
	review, err := rv.reviewByID(reviewID)
	if err != nil {
		return err
	}
	if review.AuthorID != authorID {
		return errs.Errorf(errs.EFORBIDDEN, "You are not allowed to edit this review.")
	}
	if review.RecipeID != recipeID {
		return errs.Errorf(errs.EINVALID, "The review does not belong to this recipe.")
	}
	if err := ratingInRange(rating); err != nil {
		return err
	}
	return rv.reviewGorm.Edit(review, rating, body)
}

// Delete authenticates the caller and removes their own review, cascading
// its likes.
func (rv *reviewValidator) Delete(auth *domain.AuthInfo, recipeID, reviewID int64) error {
	authorID, err := authenticate(rv.db, auth)
	if err != nil {
		return err
	}
	review, err := rv.reviewByID(reviewID)
	if err != nil {
		return err
	}
	if review.AuthorID != authorID {
		return errs.Errorf(errs.EFORBIDDEN, "You are not allowed to delete this review.")
	}
	if review.RecipeID != recipeID {
		return errs.Errorf(errs.EINVALID, "The review does not belong to this recipe.")
	}
	return rv.reviewGorm.Delete(review)
}

// recipeExists makes sure the reviewed recipe actually exists.
func (rv *reviewValidator) recipeExists(recipeID int64) error {
	err := rv.db.First(&domain.Recipe{}, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.ENOTFOUND, "The reviewed recipe does not exist.")
		}
		return err
	}
	return nil
}

// reviewByID loads a review or reports ENOTFOUND.
func (rv *reviewValidator) reviewByID(reviewID int64) (*domain.Review, error) {
	var review domain.Review
	err := rv.db.First(&review, "id = ?", reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The review does not exist.")
		}
		return nil, err
	}
	return &review, nil
}

// ratingInRange enforces the 1..5 rating scale.
func ratingInRange(rating int) error {
	if rating < 1 || rating > 5 {
		return errs.Errorf(errs.EINVALID, "Rating must be between 1 and 5.")
	}
	return nil
}

// Create stores the review and refreshes the recipe aggregate in one
// transaction.
func (rg *reviewGorm) Create(review *domain.Review) error {
	return rg.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		review.DateSubmitted = now
		review.DateModified = now
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		return refreshAggregate(tx, review.RecipeID)
	})
}

// Edit updates rating and body, bumps the modification time, and
// refreshes the recipe aggregate in one transaction.
func (rg *reviewGorm) Edit(review *domain.Review, rating int, body string) error {
	return rg.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Review{}).
			Where("id = ?", review.ID).
			Updates(map[string]interface{}{
				"rating":        rating,
				"body":          body,
				"date_modified": time.Now().UTC(),
			}).Error
		if err != nil {
			return err
		}
		return refreshAggregate(tx, review.RecipeID)
	})
}

// Delete removes the review together with its likes and refreshes the
// recipe aggregate in one transaction.
func (rg *reviewGorm) Delete(review *domain.Review) error {
	return rg.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", review.ID).
			Delete(&domain.ReviewLike{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.Review{}, "id = ?", review.ID).Error; err != nil {
			return err
		}
		return refreshAggregate(tx, review.RecipeID)
	})
}

// ByRecipe retrieves one page of a recipe's reviews. The default order is
// most recently modified first; "likes_desc" orders by like count via a
// left-joined aggregate, so reviews nobody liked still participate. Ties
// break on descending review id either way. Each returned review carries
// its author name and the ascending id list of its current likers.
func (rg *reviewGorm) ByRecipe(recipeID int64, sort string, page domain.Page) (*domain.PageResult[*domain.Review], error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}

	var total int64
	err := rg.db.Model(&domain.Review{}).
		Where("recipe_id = ?", recipeID).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	q := rg.db.Model(&domain.Review{}).Where("reviews.recipe_id = ?", recipeID)
	if sort == domain.ReviewSortLikesDesc {
		q = q.
			Joins("LEFT JOIN review_likes ON review_likes.review_id = reviews.id").
			Group("reviews.id").
			Order("COUNT(review_likes.user_id) DESC, reviews.id DESC")
	} else {
		q = q.Order("reviews.date_modified DESC, reviews.id DESC")
	}

	var reviews []*domain.Review
	err = q.Offset(page.Offset()).Limit(page.Size).Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	names, err := authorNames(rg.db, reviewAuthorIDs(reviews))
	if err != nil {
		return nil, err
	}
	for _, review := range reviews {
		review.AuthorName = names[review.AuthorID]
		err := rg.db.Model(&domain.ReviewLike{}).
			Where("review_id = ?", review.ID).
			Order("user_id ASC").
			Pluck("user_id", &review.LikerIDs).Error
		if err != nil {
			return nil, err
		}
	}
	return newPageResult(reviews, page, total), nil
}

// RefreshAggregate recomputes the review count and aggregated rating of a
// recipe and returns the full current snapshot.
func (rg *reviewGorm) RefreshAggregate(recipeID int64) (*domain.Recipe, error) {
	err := rg.db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&domain.Recipe{}, "id = ?", recipeID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.Errorf(errs.ENOTFOUND, "The recipe does not exist.")
			}
			return err
		}
		return refreshAggregate(tx, recipeID)
	})
	if err != nil {
		return nil, err
	}
	return loadRecipeSnapshot(rg.db, recipeID)
}

// refreshAggregate writes the derived pair (review count, aggregated
// rating) back to the recipe row. The rating is the average of all live
// review ratings rounded to 2 decimal places (half-up), or NULL when
// there are no reviews. It must run inside the same transaction as the
// review mutation that made the pair stale.
func refreshAggregate(tx *gorm.DB, recipeID int64) error {
	var count int64
	err := tx.Model(&domain.Review{}).
		Where("recipe_id = ?", recipeID).
		Count(&count).Error
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"review_count":      count,
		"aggregated_rating": nil,
	}
	if count > 0 {
		var avg float64
		err := tx.Model(&domain.Review{}).
			Where("recipe_id = ?", recipeID).
			Select("AVG(rating)").
			Row().Scan(&avg)
		if err != nil {
			return err
		}
		updates["aggregated_rating"] = roundTo2(avg)
	}
	return tx.Model(&domain.Recipe{}).
		Where("id = ?", recipeID).
		Updates(updates).Error
}

// roundTo2 rounds half-up to 2 decimal places. All rounded quantities
// here are non-negative, so half-away-from-zero is half-up.
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// reviewAuthorIDs collects the distinct author ids of a review page.
func reviewAuthorIDs(reviews []*domain.Review) []int64 {
	seen := make(map[int64]bool, len(reviews))
	var ids []int64
	for _, review := range reviews {
		if !seen[review.AuthorID] {
			seen[review.AuthorID] = true
			ids = append(ids, review.AuthorID)
		}
	}
	return ids
}
