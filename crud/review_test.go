package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tastebook/domain"
	"tastebook/errs"
)

func TestReviewAggregateFollowsMutations(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")
	carol := registerUser(t, s, "carol")
	recipeID := publishRecipe(t, s, alice, "Shakshuka")

	// No reviews yet: empty rating, zero count.
	recipe := mustRecipe(t, s, recipeID)
	assert.Nil(t, recipe.AggregatedRating)
	assert.Equal(t, 0, recipe.ReviewCount)

	first, err := s.Review.Create(bob, recipeID, 4, "solid")
	require.NoError(t, err)
	recipe = mustRecipe(t, s, recipeID)
	require.NotNil(t, recipe.AggregatedRating)
	assert.Equal(t, 4.0, *recipe.AggregatedRating)
	assert.Equal(t, 1, recipe.ReviewCount)

	second, err := s.Review.Create(carol, recipeID, 5, "superb")
	require.NoError(t, err)
	recipe = mustRecipe(t, s, recipeID)
	require.NotNil(t, recipe.AggregatedRating)
	assert.Equal(t, 4.5, *recipe.AggregatedRating)
	assert.Equal(t, 2, recipe.ReviewCount)

	require.NoError(t, s.Review.Edit(carol, recipeID, second, 3, "on reflection"))
	recipe = mustRecipe(t, s, recipeID)
	require.NotNil(t, recipe.AggregatedRating)
	assert.Equal(t, 3.5, *recipe.AggregatedRating)

	require.NoError(t, s.Review.Delete(carol, recipeID, second))
	recipe = mustRecipe(t, s, recipeID)
	require.NotNil(t, recipe.AggregatedRating)
	assert.Equal(t, 4.0, *recipe.AggregatedRating)
	assert.Equal(t, 1, recipe.ReviewCount)

	// Deleting the last review empties the rating again.
	require.NoError(t, s.Review.Delete(bob, recipeID, first))
	recipe = mustRecipe(t, s, recipeID)
	assert.Nil(t, recipe.AggregatedRating)
	assert.Equal(t, 0, recipe.ReviewCount)
}

func TestReviewAggregateRounding(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	recipeID := publishRecipe(t, s, alice, "Pho")

	for i, rating := range []int{4, 4, 5} {
		reviewer := registerUser(t, s, "reviewer-"+string(rune('a'+i)))
		_, err := s.Review.Create(reviewer, recipeID, rating, "")
		require.NoError(t, err)
	}

	// 13/3 = 4.333..., stored to 2 decimal places.
	recipe := mustRecipe(t, s, recipeID)
	require.NotNil(t, recipe.AggregatedRating)
	assert.Equal(t, 4.33, *recipe.AggregatedRating)
}

func TestReviewValidation(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")
	recipeID := publishRecipe(t, s, alice, "Dal")
	otherRecipeID := publishRecipe(t, s, alice, "Naan")

	_, err := s.Review.Create(bob, 9999, 4, "")
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = s.Review.Create(bob, recipeID, 0, "")
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	_, err = s.Review.Create(bob, recipeID, 6, "")
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	reviewID, err := s.Review.Create(bob, recipeID, 4, "fine")
	require.NoError(t, err)

	// Only the author may touch the review.
	err = s.Review.Edit(alice, recipeID, reviewID, 5, "")
	assert.Equal(t, errs.EFORBIDDEN, errs.ErrorCode(err))
	err = s.Review.Delete(alice, recipeID, reviewID)
	assert.Equal(t, errs.EFORBIDDEN, errs.ErrorCode(err))

	// The review must belong to the recipe named in the request.
	err = s.Review.Edit(bob, otherRecipeID, reviewID, 5, "")
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	require.NoError(t, s.Review.Delete(bob, recipeID, reviewID))
	err = s.Review.Delete(bob, recipeID, reviewID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestReviewListing(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")
	carol := registerUser(t, s, "carol")
	dave := registerUser(t, s, "dave")
	recipeID := publishRecipe(t, s, alice, "Ramen")

	r1, err := s.Review.Create(bob, recipeID, 4, "first")
	require.NoError(t, err)
	r2, err := s.Review.Create(carol, recipeID, 5, "second")
	require.NoError(t, err)
	r3, err := s.Review.Create(dave, recipeID, 3, "third")
	require.NoError(t, err)

	// Default order is most recently modified first; equal timestamps
	// break on descending id.
	page, err := s.Review.ByRecipe(recipeID, "", domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Items, 3)
	assert.Equal(t, r3, page.Items[0].ID)
	assert.Equal(t, "dave", page.Items[0].AuthorName)

	// r1 gets two likes, r2 one, r3 none. likes_desc must rank them
	// 1-2-3 with the unliked review still present.
	_, err = s.Like.Like(carol, r1)
	require.NoError(t, err)
	_, err = s.Like.Like(dave, r1)
	require.NoError(t, err)
	_, err = s.Like.Like(bob, r2)
	require.NoError(t, err)

	page, err = s.Review.ByRecipe(recipeID, domain.ReviewSortLikesDesc, domain.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, []int64{r1, r2, r3},
		[]int64{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID})
	assert.Equal(t, []int64{carol.UserID, dave.UserID}, page.Items[0].LikerIDs)

	// Paging: total stays the full count.
	page, err = s.Review.ByRecipe(recipeID, "", domain.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 1)

	_, err = s.Review.ByRecipe(recipeID, "", domain.Page{Number: 0, Size: 10})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	_, err = s.Review.ByRecipe(recipeID, "", domain.Page{Number: 1, Size: 0})
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestRefreshAggregate(t *testing.T) {
	s := testServices(t)
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")
	recipeID := publishRecipe(t, s, alice, "Gumbo")

	_, err := s.Review.Create(bob, recipeID, 5, "")
	require.NoError(t, err)

	// Knock the stored pair out of sync, then refresh.
	require.NoError(t, s.db.Model(&domain.Recipe{}).
		Where("id = ?", recipeID).
		Updates(map[string]interface{}{"aggregated_rating": 1.0, "review_count": 99}).Error)

	recipe, err := s.Review.RefreshAggregate(recipeID)
	require.NoError(t, err)
	require.NotNil(t, recipe.AggregatedRating)
	assert.Equal(t, 5.0, *recipe.AggregatedRating)
	assert.Equal(t, 1, recipe.ReviewCount)
	assert.Equal(t, "alice", recipe.AuthorName)

	_, err = s.Review.RefreshAggregate(9999)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}
