package domain

import "time"

// User is an account in the catalog. Accounts are never hard-deleted:
// deletion sets the Deleted flag, which excludes the user from
// authentication and from being a valid interaction target, while keeping
// the row around for historical references (reviews, recipes).
//
// FollowerCount and FolloweeCount are derived counters. The invariant,
// maintained transactionally by the crud services, is that FollowerCount
// equals the number of follow edges pointing at this user and
// FolloweeCount equals the number of edges leaving it.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" gorm:"not null"`
	Gender   string `json:"gender,omitempty"`
	Age      int    `json:"age,omitempty"`
	Deleted  bool   `json:"deleted" gorm:"not null;default:false"`
	Password string `json:"-"`

	FollowerCount int64 `json:"follower_count" gorm:"not null;default:0"`
	FolloweeCount int64 `json:"followee_count" gorm:"not null;default:0"`

	// Id lists of both sides of the user's follow edges,
	// attached on lookup. Not stored on the users table.
	FollowerIDs []int64 `json:"follower_ids,omitempty" gorm:"-"`
	FolloweeIDs []int64 `json:"followee_ids,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recognized gender values. An empty string means unset.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// AuthInfo is the credential record a caller sends along with every
// mutating or privacy-sensitive operation. The password is compared as a
// literal string against the stored one. A nil AuthInfo means the caller
// is unauthenticated.
type AuthInfo struct {
	UserID   int64  `json:"user_id"`
	Password string `json:"password"`
}

// RegisterUser is the payload for creating an account. Age is derived
// from Birthday (format 2006-01-02); an empty Birthday leaves it unset.
type RegisterUser struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Birthday string `json:"birthday"`
	Password string `json:"password"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	// Authenticate validates a credential record and returns the caller's
	// user id. It is the gate in front of every mutating operation.
	Authenticate(auth *AuthInfo) (int64, error)
	Register(req *RegisterUser) (int64, error)
	Login(auth *AuthInfo) (int64, error)
	ByID(id int64) (*User, error)
	UpdateProfile(auth *AuthInfo, gender string, age *int) error
	DeleteAccount(auth *AuthInfo, userID int64) error
}
