package crud

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tastebook/domain"
	"tastebook/errs"
)

func TestRecipeCreateAndByID(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")

	id, err := s.Recipe.Create(alice, &domain.Recipe{
		Name:        "Miso Soup",
		Description: "Quick weeknight soup.",
		Category:    "Soup",
		CookTime:    "PT10M",
		PrepTime:    "PT5M",
		Calories:    floatPtr(80),
		Ingredients: []string{" Tofu ", "miso paste", "tofu", "", "Wakame"},
	})
	require.NoError(t, err)

	recipe, err := s.Recipe.ByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Miso Soup", recipe.Name)
	assert.Equal(t, alice.UserID, recipe.AuthorID)
	assert.Equal(t, "alice", recipe.AuthorName)
	assert.Equal(t, "PT15M", recipe.TotalTime)
	// Trimmed, deduplicated case-insensitively, ordered on read.
	assert.Equal(t, []string{"miso paste", "Tofu", "Wakame"}, recipe.Ingredients)
	assert.Nil(t, recipe.AggregatedRating)
	assert.Equal(t, 0, recipe.ReviewCount)

	_, err = s.Recipe.Create(alice, &domain.Recipe{Name: "  "})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	_, err = s.Recipe.Create(nil, &domain.Recipe{Name: "Stolen"})
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))

	_, err = s.Recipe.ByID(9999)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = s.Recipe.ByID(0)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestRecipeUpdateTimes(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")

	id, err := s.Recipe.Create(alice, &domain.Recipe{
		Name:     "Bread",
		CookTime: "PT45M",
		PrepTime: "PT2H",
	})
	require.NoError(t, err)
	assert.Equal(t, "PT2H45M", mustRecipe(t, s, id).TotalTime)

	// A nil side keeps the stored duration.
	require.NoError(t, s.Recipe.UpdateTimes(alice, id, strPtr("PT1H"), nil))
	recipe := mustRecipe(t, s, id)
	assert.Equal(t, "PT1H", recipe.CookTime)
	assert.Equal(t, "PT2H", recipe.PrepTime)
	assert.Equal(t, "PT3H", recipe.TotalTime)

	err = s.Recipe.UpdateTimes(alice, id, strPtr("one hour"), nil)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	err = s.Recipe.UpdateTimes(alice, id, strPtr("-PT1H"), nil)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	err = s.Recipe.UpdateTimes(bob, id, strPtr("PT1H"), nil)
	assert.Equal(t, errs.EFORBIDDEN, errs.ErrorCode(err))
	err = s.Recipe.UpdateTimes(alice, 9999, strPtr("PT1H"), nil)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestRecipeDeleteCascades(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")

	id, err := s.Recipe.Create(alice, &domain.Recipe{
		Name:        "Lasagna",
		Ingredients: []string{"pasta", "ragu"},
	})
	require.NoError(t, err)
	reviewID, err := s.Review.Create(bob, id, 5, "")
	require.NoError(t, err)
	_, err = s.Like.Like(alice, reviewID)
	require.NoError(t, err)

	err = s.Recipe.Delete(bob, id)
	assert.Equal(t, errs.EFORBIDDEN, errs.ErrorCode(err))

	require.NoError(t, s.Recipe.Delete(alice, id))

	for table, where := range map[string]interface{}{
		"recipes":      id,
		"ingredients":  id,
		"reviews":      id,
		"review_likes": reviewID,
	} {
		var count int64
		column := "recipe_id"
		if table == "recipes" {
			column = "id"
		}
		if table == "review_likes" {
			column = "review_id"
		}
		require.NoError(t, s.db.Table(table).
			Where(column+" = ?", where).Count(&count).Error)
		assert.Equal(t, int64(0), count, table)
	}

	err = s.Recipe.Delete(alice, id)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestRecipeSearchFilters(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")

	curry, err := s.Recipe.Create(alice, &domain.Recipe{
		Name: "Green Curry", Category: "Dinner", Description: "Thai classic.",
	})
	require.NoError(t, err)
	soup, err := s.Recipe.Create(alice, &domain.Recipe{
		Name: "Tomato Soup", Category: "Dinner", Description: "With a curry twist.",
	})
	require.NoError(t, err)
	cake, err := s.Recipe.Create(alice, &domain.Recipe{
		Name: "Carrot Cake", Category: "Dessert",
	})
	require.NoError(t, err)

	_, err = s.Review.Create(bob, curry, 5, "")
	require.NoError(t, err)
	_, err = s.Review.Create(bob, soup, 3, "")
	require.NoError(t, err)

	all := domain.Page{Number: 1, Size: 10}

	// Keyword matches name or description, case-insensitively.
	page, err := s.Recipe.Search(domain.RecipeFilter{Keyword: strPtr("CURRY")}, "", all)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, []int64{curry, soup}, recipeIDs(page.Items))

	// Filters are conjunctive.
	page, err = s.Recipe.Search(domain.RecipeFilter{
		Keyword:   strPtr("curry"),
		Category:  strPtr("Dinner"),
		MinRating: floatPtr(4),
	}, "", all)
	require.NoError(t, err)
	assert.Equal(t, []int64{curry}, recipeIDs(page.Items))

	// An unrated recipe never matches a rating floor.
	page, err = s.Recipe.Search(domain.RecipeFilter{MinRating: floatPtr(1)}, "", all)
	require.NoError(t, err)
	assert.NotContains(t, recipeIDs(page.Items), cake)

	// The zero filter matches everything.
	page, err = s.Recipe.Search(domain.RecipeFilter{}, "", all)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
}

func TestRecipeSearchSorting(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")

	day := func(n int) time.Time {
		return time.Date(2026, 3, n, 12, 0, 0, 0, time.UTC)
	}
	r1, err := s.Recipe.Create(alice, &domain.Recipe{
		Name: "One", Calories: floatPtr(300), DatePublished: day(1),
	})
	require.NoError(t, err)
	r2, err := s.Recipe.Create(alice, &domain.Recipe{
		Name: "Two", Calories: floatPtr(100), DatePublished: day(3),
	})
	require.NoError(t, err)
	r3, err := s.Recipe.Create(alice, &domain.Recipe{
		Name: "Three", DatePublished: day(2),
	})
	require.NoError(t, err)

	_, err = s.Review.Create(bob, r1, 3, "")
	require.NoError(t, err)
	_, err = s.Review.Create(bob, r2, 5, "")
	require.NoError(t, err)

	all := domain.Page{Number: 1, Size: 10}

	// Unrated recipes sort last, not first, under rating_desc.
	page, err := s.Recipe.Search(domain.RecipeFilter{}, domain.RecipeSortRatingDesc, all)
	require.NoError(t, err)
	assert.Equal(t, []int64{r2, r1, r3}, recipeIDs(page.Items))

	// Recipes without calorie data likewise sort last under calories_asc.
	page, err = s.Recipe.Search(domain.RecipeFilter{}, domain.RecipeSortCaloriesAsc, all)
	require.NoError(t, err)
	assert.Equal(t, []int64{r2, r1, r3}, recipeIDs(page.Items))

	page, err = s.Recipe.Search(domain.RecipeFilter{}, domain.RecipeSortDateDesc, all)
	require.NoError(t, err)
	assert.Equal(t, []int64{r2, r3, r1}, recipeIDs(page.Items))

	// Unknown sort keys fall back to ascending id.
	page, err = s.Recipe.Search(domain.RecipeFilter{}, "alphabetical", all)
	require.NoError(t, err)
	assert.Equal(t, []int64{r1, r2, r3}, recipeIDs(page.Items))
}

func TestRecipeSearchPagination(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")

	var want []int64
	for i := 0; i < 7; i++ {
		want = append(want, publishRecipe(t, s, alice, fmt.Sprintf("Recipe %d", i)))
	}

	// Walking the pages yields every recipe exactly once, in order.
	var got []int64
	for number := 1; ; number++ {
		page, err := s.Recipe.Search(domain.RecipeFilter{}, "", domain.Page{Number: number, Size: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(len(want)), page.Total)
		if len(page.Items) == 0 {
			break
		}
		got = append(got, recipeIDs(page.Items)...)
	}
	assert.Equal(t, want, got)

	_, err := s.Recipe.Search(domain.RecipeFilter{}, "", domain.Page{Number: 0, Size: 3})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	_, err = s.Recipe.Search(domain.RecipeFilter{}, "", domain.Page{Number: 1, Size: 0})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestFeed(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")
	carol := registerUser(t, s, "carol")

	day := func(n int) time.Time {
		return time.Date(2026, 4, n, 8, 0, 0, 0, time.UTC)
	}
	_, err := s.Follow.Toggle(alice, bob.UserID)
	require.NoError(t, err)

	fromBob, err := s.Recipe.Create(bob, &domain.Recipe{
		Name: "Bob's Stew", Category: "Dinner", DatePublished: day(2),
	})
	require.NoError(t, err)
	bobsCake, err := s.Recipe.Create(bob, &domain.Recipe{
		Name: "Bob's Cake", Category: "Dessert", DatePublished: day(5),
	})
	require.NoError(t, err)
	_, err = s.Recipe.Create(carol, &domain.Recipe{
		Name: "Carol's Salad", Category: "Dinner", DatePublished: day(3),
	})
	require.NoError(t, err)
	// The caller's own recipes don't show up in their feed.
	_, err = s.Recipe.Create(alice, &domain.Recipe{
		Name: "Alice's Toast", DatePublished: day(4),
	})
	require.NoError(t, err)

	all := domain.Page{Number: 1, Size: 10}
	page, err := s.Recipe.Feed(alice, nil, all)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, bobsCake, page.Items[0].RecipeID)
	assert.Equal(t, fromBob, page.Items[1].RecipeID)
	assert.Equal(t, "bob", page.Items[0].AuthorName)

	page, err = s.Recipe.Feed(alice, strPtr("Dinner"), all)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, fromBob, page.Items[0].RecipeID)

	_, err = s.Recipe.Feed(nil, nil, all)
	assert.Equal(t, errs.EUNAUTHORIZED, errs.ErrorCode(err))
	_, err = s.Recipe.Feed(alice, nil, domain.Page{Number: 0, Size: 10})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

// recipeIDs projects a recipe page onto its id sequence.
func recipeIDs(recipes []*domain.Recipe) []int64 {
	ids := make([]int64, 0, len(recipes))
	for _, recipe := range recipes {
		ids = append(ids, recipe.ID)
	}
	return ids
}
