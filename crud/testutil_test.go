package crud

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tastebook/domain"
)

// testDB opens an in-memory SQLite database with the full schema. One
// connection only, so the in-memory database is shared across the test's
// transactions.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		domain.User{},
		domain.Follow{},
		domain.Recipe{},
		domain.Ingredient{},
		domain.Review{},
		domain.ReviewLike{},
	)
	require.NoError(t, err)
	return db
}

// testServices assembles the full service set on a fresh test database.
func testServices(t *testing.T) *Services {
	t.Helper()
	services, err := NewServices(testDB(t),
		WithUser(),
		WithRecipe(),
		WithReview(),
		WithFollow(),
		WithLike(),
		WithStats(),
		WithImport(),
	)
	require.NoError(t, err)
	return services
}

// registerUser creates an account through the service and returns its
// credential record.
func registerUser(t *testing.T, s *Services, name string) *domain.AuthInfo {
	t.Helper()
	id, err := s.User.Register(&domain.RegisterUser{
		Name:     name,
		Password: name + "-secret",
	})
	require.NoError(t, err)
	return &domain.AuthInfo{UserID: id, Password: name + "-secret"}
}

// publishRecipe creates a minimal recipe owned by auth and returns its id.
func publishRecipe(t *testing.T, s *Services, auth *domain.AuthInfo, name string) int64 {
	t.Helper()
	id, err := s.Recipe.Create(auth, &domain.Recipe{Name: name})
	require.NoError(t, err)
	return id
}

// mustUser loads a user row straight from the database.
func mustUser(t *testing.T, s *Services, id int64) *domain.User {
	t.Helper()
	var user domain.User
	require.NoError(t, s.db.First(&user, "id = ?", id).Error)
	return &user
}

// mustRecipe loads a recipe row straight from the database.
func mustRecipe(t *testing.T, s *Services, id int64) *domain.Recipe {
	t.Helper()
	var recipe domain.Recipe
	require.NoError(t, s.db.First(&recipe, "id = ?", id).Error)
	return &recipe
}

// floatPtr, strPtr and intPtr build pointer literals for filters and
// optional arguments.
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func intPtr(v int) *int           { return &v }
