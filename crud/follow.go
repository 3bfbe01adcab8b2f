package crud

import (
	"errors"

	"gorm.io/gorm"

	"tastebook/domain"
	"tastebook/errs"
)

// FollowService maintains the follow graph and the derived follower and
// followee counters. It implements the domain.FollowService interface.
type FollowService struct {
	followValidator
}

// followValidator runs validations on incoming Follow data.
// On success, it passes the data on to followGorm.
// Otherwise, it returns the error of the validation that has failed.
type followValidator struct {
	followGorm
}

// followGorm runs the edge and counter mutations on the database. It
// assumes that data has been validated.
type followGorm struct {
	db *gorm.DB
}

// NewFollowService returns an instance of FollowService.
func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{
		followValidator{
			followGorm{
				db: db,
			},
		},
	}
}

// Ensure the FollowService struct properly implements the domain.FollowService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FollowService = &FollowService{}

// Toggle authenticates the caller, validates the target, and flips the
// follow edge. It reports whether the caller follows the target after the
// call.
func (fv *followValidator) Toggle(auth *domain.AuthInfo, followeeID int64) (bool, error) {
	followerID, err := authenticate(fv.db, auth)
	if err != nil {
		return false, err
	}
	follow := &domain.Follow{FollowerID: followerID, FolloweeID: followeeID}
	err = runFollowValFns(follow,
		fv.followedIsNotFollower,
		fv.followedUserExists)
	if err != nil {
		return false, err
	}
	return fv.followGorm.Toggle(follow)
}

// runFollowValFns runs any number of functions of type followValFn on the passed in Follow object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFollowValFns(follow *domain.Follow, fns ...followValFn) error {
	for _, fn := range fns {
		if err := fn(follow); err != nil {
			return err
		}
	}
	return nil
}

// A followValFn is any function that takes in a pointer to a domain.Follow object and returns an error.
type followValFn func(follow *domain.Follow) error

// followedIsNotFollower rejects self-follows.
func (fv *followValidator) followedIsNotFollower(follow *domain.Follow) error {
	if follow.FollowerID == follow.FolloweeID {
		return errs.Errorf(errs.EFORBIDDEN, "You cannot follow yourself.")
	}
	return nil
}

// followedUserExists makes sure the user to be followed exists and is not
// soft-deleted.
func (fv *followValidator) followedUserExists(follow *domain.Follow) error {
	err := fv.db.First(&domain.User{}, "id = ? AND deleted = ?", follow.FolloweeID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Errorf(errs.EFORBIDDEN, "The user to be followed does not exist.")
		}
		return err
	}
	return nil
}

// Toggle inserts the edge if absent, removes it if present, and adjusts
// the followee's follower count and the follower's followee count by the
// same delta. Edge and counters move in one transaction, so no reader
// ever observes them disagreeing.
func (fg *followGorm) Toggle(follow *domain.Follow) (following bool, err error) {
	err = fg.db.Transaction(func(tx *gorm.DB) error {
		var existing domain.Follow
		err := tx.First(&existing,
			"follower_id = ? AND followee_id = ?",
			follow.FollowerID, follow.FolloweeID).Error

		var delta int
		switch {
		case err == nil:
			if err := tx.Where(
				"follower_id = ? AND followee_id = ?",
				follow.FollowerID, follow.FolloweeID).
				Delete(&domain.Follow{}).Error; err != nil {
				return err
			}
			delta, following = -1, false
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(follow).Error; err != nil {
				return err
			}
			delta, following = 1, true
		default:
			return err
		}

		if err := tx.Model(&domain.User{}).
			Where("id = ?", follow.FolloweeID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + ?", delta)).
			Error; err != nil {
			return err
		}
		return tx.Model(&domain.User{}).
			Where("id = ?", follow.FollowerID).
			UpdateColumn("followee_count", gorm.Expr("followee_count + ?", delta)).
			Error
	})
	if err != nil {
		return false, err
	}
	return following, nil
}
