package crud

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"tastebook/domain"
	"tastebook/errs"
)

// UserService manages Users and doubles as the credential guard: its
// Authenticate method backs every mutating operation in the other
// services. It implements the domain.UserService interface.
type UserService struct {
	userValidator
}

// userValidator runs validations on incoming User data.
// On success, it passes the data on to userGorm.
// Otherwise, it returns the error of the validation that has failed.
type userValidator struct {
	userGorm
}

// userGorm runs CRUD operations on the database using incoming User data.
// It assumes that data has been validated.
type userGorm struct {
	db *gorm.DB
}

// NewUserService returns an instance of UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{
		userValidator{
			userGorm{
				db: db,
			},
		},
	}
}

// Ensure the UserService struct properly implements the domain.UserService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.UserService = &UserService{}

// Authenticate validates a credential record and returns the caller's
// user id. Passwords are stored and compared as literal strings.
func (uv *userValidator) Authenticate(auth *domain.AuthInfo) (int64, error) {
	return authenticate(uv.db, auth)
}

// Register creates an account. The age is derived from the birthday as a
// calendar-year difference, the way the catalog has always done it.
func (uv *userValidator) Register(req *domain.RegisterUser) (int64, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return 0, errs.Errorf(errs.EINVALID, "A name is required.")
	}
	if req.Password == "" {
		return 0, errs.Errorf(errs.EINVALID, "A password is required.")
	}

	age := 0
	if req.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			return 0, errs.Errorf(errs.EINVALID, "Invalid birthday, expected YYYY-MM-DD.")
		}
		if years := time.Now().Year() - birthday.Year(); years > 0 {
			age = years
		}
	}

	user := &domain.User{
		Name:     strings.TrimSpace(req.Name),
		Gender:   normalizeGender(req.Gender),
		Age:      age,
		Password: req.Password,
	}
	if err := uv.userGorm.Create(user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Login checks a credential record and returns the user id on success.
func (uv *userValidator) Login(auth *domain.AuthInfo) (int64, error) {
	if auth == nil || auth.Password == "" {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid credentials.")
	}
	return authenticate(uv.db, auth)
}

// UpdateProfile sets gender and/or age for the authenticated user. Values
// that don't pass the domain checks (unknown gender, non-positive age)
// are skipped rather than rejected.
func (uv *userValidator) UpdateProfile(auth *domain.AuthInfo, gender string, age *int) error {
	userID, err := authenticate(uv.db, auth)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if g := normalizeGender(gender); g == domain.GenderMale || g == domain.GenderFemale {
		updates["gender"] = g
	}
	if age != nil && *age > 0 {
		updates["age"] = *age
	}
	if len(updates) == 0 {
		return nil
	}
	return uv.userGorm.Update(userID, updates)
}

// DeleteAccount soft-deletes the caller's own account. All follow edges
// touching the account are removed and the counters of the surviving
// endpoint of each edge are fixed up, atomically with the flag flip.
func (uv *userValidator) DeleteAccount(auth *domain.AuthInfo, userID int64) error {
	callerID, err := authenticate(uv.db, auth)
	if err != nil {
		return err
	}
	if callerID != userID {
		return errs.Errorf(errs.EFORBIDDEN, "You can only delete your own account.")
	}
	return uv.userGorm.SoftDelete(userID)
}

// normalizeGender maps case-insensitive male/female spellings onto the
// stored values and leaves anything else untouched.
func normalizeGender(gender string) string {
	switch strings.ToUpper(gender) {
	case "MALE":
		return domain.GenderMale
	case "FEMALE":
		return domain.GenderFemale
	}
	return gender
}

// ByID retrieves a single User along with the id lists of both sides of
// its follow edges, ascending for determinism. Soft-deleted users are
// still readable.
func (ug *userGorm) ByID(id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, errs.Errorf(errs.EINVALID, "Invalid user id.")
	}
	var user domain.User
	if err := ug.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
		return nil, err
	}

	err := ug.db.Model(&domain.Follow{}).
		Where("followee_id = ?", id).
		Order("follower_id ASC").
		Pluck("follower_id", &user.FollowerIDs).Error
	if err != nil {
		return nil, err
	}
	err = ug.db.Model(&domain.Follow{}).
		Where("follower_id = ?", id).
		Order("followee_id ASC").
		Pluck("followee_id", &user.FolloweeIDs).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create stores a new user record.
func (ug *userGorm) Create(user *domain.User) error {
	return ug.db.Create(user).Error
}

// Update applies the given column updates to a user record.
func (ug *userGorm) Update(id int64, updates map[string]interface{}) error {
	return ug.db.Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error
}

// SoftDelete marks the user deleted, drops every follow edge touching it,
// and decrements the counters of the other endpoint of each dropped edge.
// The deleted user's own counters are left alone; they no longer matter.
func (ug *userGorm) SoftDelete(userID int64) error {
	return ug.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`UPDATE users SET followee_count = followee_count - 1
			 WHERE id IN (SELECT follower_id FROM follows WHERE followee_id = ?)`,
			userID).Error
		if err != nil {
			return err
		}
		err = tx.Exec(
			`UPDATE users SET follower_count = follower_count - 1
			 WHERE id IN (SELECT followee_id FROM follows WHERE follower_id = ?)`,
			userID).Error
		if err != nil {
			return err
		}
		err = tx.Where("follower_id = ? OR followee_id = ?", userID, userID).
			Delete(&domain.Follow{}).Error
		if err != nil {
			return err
		}
		return tx.Model(&domain.User{}).
			Where("id = ?", userID).
			Update("deleted", true).Error
	})
}
