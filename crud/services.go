package crud

import "gorm.io/gorm"

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It's basically just wrapping the constructor
// method of any given crud service. It exists to be able to easily create
// the crud services using functional options in main.go.
type ServicesConfig func(*Services) error

// Services is a container object holding pointers to all the crud services.
// The crud services all share the database connection provided by Services.
type Services struct {
	db     *gorm.DB
	User   *UserService
	Recipe *RecipeService
	Review *ReviewService
	Follow *FollowService
	Like   *LikeService
	Stats  *StatsService
	Import *ImportService
}

// NewServices returns a new Services object, containing any crud services
// it's told to create by one of the passed in ServicesConfig functions.
// It shares the passed in database connection with any crud service it creates.
func NewServices(db *gorm.DB, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db: db,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// WithUser wraps the constructor of UserService, NewUserService.
func WithUser() ServicesConfig {
	return func(s *Services) error {
		s.User = NewUserService(s.db)
		return nil
	}
}

// WithRecipe wraps the constructor of RecipeService, NewRecipeService.
func WithRecipe() ServicesConfig {
	return func(s *Services) error {
		s.Recipe = NewRecipeService(s.db)
		return nil
	}
}

// WithReview wraps the constructor of ReviewService, NewReviewService.
func WithReview() ServicesConfig {
	return func(s *Services) error {
		s.Review = NewReviewService(s.db)
		return nil
	}
}

// WithFollow wraps the constructor of FollowService, NewFollowService.
func WithFollow() ServicesConfig {
	return func(s *Services) error {
		s.Follow = NewFollowService(s.db)
		return nil
	}
}

// WithLike wraps the constructor of LikeService, NewLikeService.
func WithLike() ServicesConfig {
	return func(s *Services) error {
		s.Like = NewLikeService(s.db)
		return nil
	}
}

// WithStats wraps the constructor of StatsService, NewStatsService.
func WithStats() ServicesConfig {
	return func(s *Services) error {
		s.Stats = NewStatsService(s.db)
		return nil
	}
}

// WithImport wraps the constructor of ImportService, NewImportService.
func WithImport() ServicesConfig {
	return func(s *Services) error {
		s.Import = NewImportService(s.db)
		return nil
	}
}
