package domain

// Follow represents a self-referential many-to-many relationship between
// two users. The FollowerID is the id of the user that follows, and the
// FolloweeID is the id of the user being followed. Pairs are unique and
// self-loops are rejected. In the database Follows are stored within the
// follows table.
type Follow struct {
	FollowerID int64 `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FolloweeID int64 `json:"followee_id" gorm:"primaryKey;autoIncrement:false;index"`
}

// FollowService maintains the follow graph and its derived counters.
type FollowService interface {
	// Toggle flips the follow edge from the authenticated user to
	// followeeID and reports whether the edge exists afterwards. The edge
	// write and both counter updates happen in one transaction.
	Toggle(auth *AuthInfo, followeeID int64) (bool, error)
}
