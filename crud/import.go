package crud

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tastebook/domain"
)

// importBatchSize bounds the row count per INSERT during bulk loads.
const importBatchSize = 500

// ImportData is a complete dataset for a bulk load. Users may carry
// follower/followee id lists, recipes their ingredient lists, reviews
// their liker id lists; the edges are reconstructed from those.
type ImportData struct {
	Users   []*domain.User   `json:"users"`
	Recipes []*domain.Recipe `json:"recipes"`
	Reviews []*domain.Review `json:"reviews"`
}

// ImportService loads a complete dataset in a single transaction. After
// the rows are in, it recomputes the follower/followee counters from the
// actual follow edges and the per-recipe review aggregates from the
// actual reviews, so the derived-counter invariants hold for imported
// data no matter what the input claimed.
type ImportService struct {
	db *gorm.DB
}

// NewImportService returns an instance of ImportService.
func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// Import runs the bulk load. An empty dataset is a no-op.
func (s *ImportService) Import(data *ImportData) error {
	if data == nil ||
		(len(data.Users) == 0 && len(data.Recipes) == 0 && len(data.Reviews) == 0) {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := importUsers(tx, data.Users); err != nil {
			return err
		}
		if err := importRecipes(tx, data.Recipes); err != nil {
			return err
		}
		if err := importReviews(tx, data.Reviews); err != nil {
			return err
		}
		if err := importFollows(tx, data.Users); err != nil {
			return err
		}
		if err := recomputeFollowCounters(tx); err != nil {
			return err
		}
		for _, recipe := range data.Recipes {
			if err := refreshAggregate(tx, recipe.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func importUsers(tx *gorm.DB, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}
	for _, user := range users {
		user.Gender = normalizeGender(user.Gender)
	}
	return tx.CreateInBatches(users, importBatchSize).Error
}

func importRecipes(tx *gorm.DB, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(recipes, importBatchSize).Error; err != nil {
		return err
	}
	for _, recipe := range recipes {
		err := insertIngredients(tx, recipe.ID, dedupIngredients(recipe.Ingredients))
		if err != nil {
			return err
		}
	}
	return nil
}

func importReviews(tx *gorm.DB, reviews []*domain.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(reviews, importBatchSize).Error; err != nil {
		return err
	}
	var likes []domain.ReviewLike
	for _, review := range reviews {
		for _, likerID := range review.LikerIDs {
			likes = append(likes, domain.ReviewLike{UserID: likerID, ReviewID: review.ID})
		}
	}
	if len(likes) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(likes, importBatchSize).Error
}

// importFollows rebuilds the edge set from both sides of every user's id
// lists, dropping self-loops and duplicates.
func importFollows(tx *gorm.DB, users []*domain.User) error {
	type pair struct{ follower, followee int64 }
	seen := make(map[pair]bool)
	var follows []domain.Follow
	add := func(follower, followee int64) {
		if follower == followee {
			return
		}
		p := pair{follower, followee}
		if seen[p] {
			return
		}
		seen[p] = true
		follows = append(follows, domain.Follow{FollowerID: follower, FolloweeID: followee})
	}
	for _, user := range users {
		for _, followerID := range user.FollowerIDs {
			add(followerID, user.ID)
		}
		for _, followeeID := range user.FolloweeIDs {
			add(user.ID, followeeID)
		}
	}
	if len(follows) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(follows, importBatchSize).Error
}

// recomputeFollowCounters derives every user's counters from the edges.
func recomputeFollowCounters(tx *gorm.DB) error {
	return tx.Exec(`
		UPDATE users SET
			follower_count = (SELECT COUNT(*) FROM follows WHERE followee_id = users.id),
			followee_count = (SELECT COUNT(*) FROM follows WHERE follower_id = users.id)`).
		Error
}
