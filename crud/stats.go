package crud

import (
	"gorm.io/gorm"

	"tastebook/domain"
)

// StatsService runs the one-shot analytical queries over the whole
// dataset: closest calorie pair, most complex recipes, highest follow
// ratio. All three are read-only full scans with deterministic
// tie-breaking and no precomputed index. It implements the
// domain.StatsService interface.
type StatsService struct {
	db *gorm.DB
}

// NewStatsService returns an instance of StatsService.
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// Ensure the StatsService struct properly implements the domain.StatsService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.StatsService = &StatsService{}

// ClosestCaloriePair finds, over all pairs of distinct recipes with
// calorie data, the pair minimizing the absolute calorie difference.
// The join condition keeps the smaller id on the left so each pair is
// considered once; ties break on the smaller first id, then the smaller
// second id. Values come back rounded to 2 decimal places. Returns nil
// when fewer than two recipes have calorie data.
func (s *StatsService) ClosestCaloriePair() (*domain.CaloriePair, error) {
	var pair domain.CaloriePair
	res := s.db.Raw(`
		SELECT r1.id AS recipe_a, r2.id AS recipe_b,
		       r1.calories AS calories_a, r2.calories AS calories_b,
		       ABS(r1.calories - r2.calories) AS difference
		FROM recipes r1
		JOIN recipes r2 ON r1.id < r2.id
		WHERE r1.calories IS NOT NULL AND r2.calories IS NOT NULL
		ORDER BY difference ASC, r1.id ASC, r2.id ASC
		LIMIT 1`).Scan(&pair)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	pair.CaloriesA = roundTo2(pair.CaloriesA)
	pair.CaloriesB = roundTo2(pair.CaloriesB)
	pair.Difference = roundTo2(pair.Difference)
	return &pair, nil
}

// MostComplexRecipes returns the top 3 recipes by ingredient count,
// descending, ties broken by ascending recipe id. The inner join excludes
// recipes without any ingredients entirely.
func (s *StatsService) MostComplexRecipes() ([]*domain.RecipeComplexity, error) {
	var top []*domain.RecipeComplexity
	err := s.db.Raw(`
		SELECT recipes.id AS recipe_id, recipes.name AS name,
		       COUNT(ingredients.ingredient) AS ingredient_count
		FROM ingredients
		JOIN recipes ON recipes.id = ingredients.recipe_id
		GROUP BY recipes.id, recipes.name
		ORDER BY ingredient_count DESC, recipes.id ASC
		LIMIT 3`).Scan(&top).Error
	if err != nil {
		return nil, err
	}
	return top, nil
}

// HighestFollowRatio returns the live user maximizing
// followerCount / followeeCount as real division, ties broken by
// ascending user id. Users with a zero followee count are excluded no
// matter how many followers they have. Returns nil when nobody
// qualifies.
func (s *StatsService) HighestFollowRatio() (*domain.FollowRatio, error) {
	var ratio domain.FollowRatio
	res := s.db.Raw(`
		SELECT id AS user_id, name,
		       (follower_count * 1.0) / followee_count AS ratio
		FROM users
		WHERE deleted = ? AND followee_count <> 0
		ORDER BY ratio DESC, id ASC
		LIMIT 1`, false).Scan(&ratio)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &ratio, nil
}
