package crud

import (
	"errors"

	"gorm.io/gorm"

	"tastebook/domain"
	"tastebook/errs"
)

// authenticate is the credential gate in front of every mutating crud
// operation. It resolves the supplied credential record to a user id, or
// fails with EUNAUTHORIZED when the credential is absent, the user does
// not exist or is soft-deleted, or the password does not match the stored
// one as a literal string. It has no side effects.
//
// Ownership checks (is the caller the resource's author?) are performed
// by the individual services on top of the returned id.
func authenticate(db *gorm.DB, auth *domain.AuthInfo) (int64, error) {
	if auth == nil {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Authentication required.")
	}
	var user domain.User
	err := db.First(&user, "id = ? AND deleted = ?", auth.UserID, false).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid credentials.")
		}
		return 0, err
	}
	if user.Password != auth.Password {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid credentials.")
	}
	return user.ID, nil
}
