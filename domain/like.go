package domain

// ReviewLike represents a many-to-many relationship between a User and a
// Review. A ReviewLike is created when a user decides to like a review.
// It's destroyed when the user unlikes it, or when the review gets
// deleted.
type ReviewLike struct {
	UserID   int64 `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	ReviewID int64 `json:"review_id" gorm:"primaryKey;autoIncrement:false;index"`
}

// LikeService is a set of methods to manipulate and work with the
// ReviewLike model. Both operations return the review's like count after
// the mutation.
type LikeService interface {
	Like(auth *AuthInfo, reviewID int64) (int64, error)
	Unlike(auth *AuthInfo, reviewID int64) (int64, error)
}
