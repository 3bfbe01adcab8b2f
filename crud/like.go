package crud

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tastebook/domain"
	"tastebook/errs"
)

// LikeService manages ReviewLikes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming ReviewLike data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming ReviewLike
// data. It assumes that data has been validated.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Like authenticates the caller and likes a review. Liking your own
// review is rejected here; note the unlike path carries no such check.
// Returns the review's like count after the operation; liking twice is a
// no-op.
func (lv *likeValidator) Like(auth *domain.AuthInfo, reviewID int64) (int64, error) {
	userID, err := authenticate(lv.db, auth)
	if err != nil {
		return 0, err
	}
	review, err := lv.likedReviewExists(reviewID)
	if err != nil {
		return 0, err
	}
	if review.AuthorID == userID {
		return 0, errs.Errorf(errs.EFORBIDDEN, "You cannot like your own review.")
	}
	return lv.likeGorm.Like(&domain.ReviewLike{UserID: userID, ReviewID: reviewID})
}

// Unlike authenticates the caller and removes their like from a review.
// Returns the review's like count after the operation; unliking a review
// that was never liked is a no-op.
func (lv *likeValidator) Unlike(auth *domain.AuthInfo, reviewID int64) (int64, error) {
	userID, err := authenticate(lv.db, auth)
	if err != nil {
		return 0, err
	}
	if _, err := lv.likedReviewExists(reviewID); err != nil {
		return 0, err
	}
	return lv.likeGorm.Unlike(&domain.ReviewLike{UserID: userID, ReviewID: reviewID})
}

// likedReviewExists makes sure the review to be (un)liked actually exists.
func (lv *likeValidator) likedReviewExists(reviewID int64) (*domain.Review, error) {
	var review domain.Review
	err := lv.db.First(&review, "id = ?", reviewID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The review does not exist.")
		}
		return nil, err
	}
	return &review, nil
}

// Like stores the like edge, ignoring the conflict when it is already
// present, and returns the new like count.
func (lg *likeGorm) Like(like *domain.ReviewLike) (int64, error) {
	err := lg.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
	if err != nil {
		return 0, err
	}
	return lg.countLikes(like.ReviewID)
}

// Unlike removes the like edge and returns the new like count.
func (lg *likeGorm) Unlike(like *domain.ReviewLike) (int64, error) {
	err := lg.db.
		Where("user_id = ? AND review_id = ?", like.UserID, like.ReviewID).
		Delete(&domain.ReviewLike{}).Error
	if err != nil {
		return 0, err
	}
	return lg.countLikes(like.ReviewID)
}

// countLikes returns the current like count of a review.
func (lg *likeGorm) countLikes(reviewID int64) (int64, error) {
	var count int64
	err := lg.db.Model(&domain.ReviewLike{}).
		Where("review_id = ?", reviewID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
