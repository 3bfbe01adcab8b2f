package crud

import (
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tastebook/domain"
	"tastebook/errs"
)

// RecipeService manages Recipes, their ingredient memberships, recipe
// search and the follow feed. It implements the domain.RecipeService
// interface.
type RecipeService struct {
	recipeValidator
}

// recipeValidator runs validations on incoming Recipe data.
// On success, it passes the data on to recipeGorm.
// Otherwise, it returns the error of the validation that has failed.
type recipeValidator struct {
	recipeGorm
}

// recipeGorm runs CRUD operations on the database using incoming Recipe
// data. It assumes that data has been validated.
type recipeGorm struct {
	db *gorm.DB
}

// NewRecipeService returns an instance of RecipeService.
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{
		recipeValidator{
			recipeGorm{
				db: db,
			},
		},
	}
}

// Ensure the RecipeService struct properly implements the domain.RecipeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.RecipeService = &RecipeService{}

// Create authenticates the caller and publishes a recipe in their name.
// Ingredients are trimmed and deduplicated case-insensitively; the
// derived rating fields start out empty regardless of the input.
func (rv *recipeValidator) Create(auth *domain.AuthInfo, recipe *domain.Recipe) (int64, error) {
	authorID, err := authenticate(rv.db, auth)
	if err != nil {
		return 0, err
	}
	if recipe == nil || strings.TrimSpace(recipe.Name) == "" {
		return 0, errs.Errorf(errs.EINVALID, "A recipe name is required.")
	}

	total, err := totalOf(recipe.CookTime, recipe.PrepTime)
	if err != nil {
		return 0, err
	}
	recipe.TotalTime = total
	recipe.AuthorID = authorID
	recipe.AggregatedRating = nil
	recipe.ReviewCount = 0
	if recipe.DatePublished.IsZero() {
		recipe.DatePublished = time.Now().UTC()
	}
	recipe.Ingredients = dedupIngredients(recipe.Ingredients)

	if err := rv.recipeGorm.Create(recipe); err != nil {
		return 0, err
	}
	return recipe.ID, nil
}

// Delete authenticates the caller and removes their own recipe, cascading
// its ingredients, reviews, and the likes of those reviews.
func (rv *recipeValidator) Delete(auth *domain.AuthInfo, recipeID int64) error {
	callerID, err := authenticate(rv.db, auth)
	if err != nil {
		return err
	}
	recipe, err := rv.recipeByID(recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != callerID {
		return errs.Errorf(errs.EFORBIDDEN, "You are not allowed to delete this recipe.")
	}
	return rv.recipeGorm.Delete(recipeID)
}

// UpdateTimes sets the cook and/or prep duration of the caller's recipe
// from ISO-8601 strings and recomputes the total. A nil side falls back
// to the stored value; a stored blank counts as zero.
func (rv *recipeValidator) UpdateTimes(auth *domain.AuthInfo, recipeID int64, cookISO, prepISO *string) error {
	callerID, err := authenticate(rv.db, auth)
	if err != nil {
		return err
	}
	recipe, err := rv.recipeByID(recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != callerID {
		return errs.Errorf(errs.EFORBIDDEN, "You are not allowed to edit this recipe.")
	}

	cookStr := recipe.CookTime
	if cookISO != nil {
		cookStr = *cookISO
	}
	prepStr := recipe.PrepTime
	if prepISO != nil {
		prepStr = *prepISO
	}
	total, err := totalOf(cookStr, prepStr)
	if err != nil {
		return err
	}
	return rv.recipeGorm.UpdateTimes(recipeID, cookStr, prepStr, total)
}

// recipeByID loads a bare recipe row or reports ENOTFOUND.
func (rv *recipeValidator) recipeByID(recipeID int64) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := rv.db.First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The recipe does not exist.")
		}
		return nil, err
	}
	return &recipe, nil
}

// totalOf parses both duration strings (blank counts as zero) and returns
// their formatted sum. Negative or malformed durations are rejected. Two
// blanks yield a blank total.
func totalOf(cookISO, prepISO string) (string, error) {
	parse := func(s string) (time.Duration, error) {
		if strings.TrimSpace(s) == "" {
			return 0, nil
		}
		d, err := domain.ParseISODuration(s)
		if err != nil {
			return 0, errs.Errorf(errs.EINVALID, "Invalid ISO-8601 duration %q.", s)
		}
		if d < 0 {
			return 0, errs.Errorf(errs.EINVALID, "Durations must not be negative.")
		}
		return d, nil
	}
	cook, err := parse(cookISO)
	if err != nil {
		return "", err
	}
	prep, err := parse(prepISO)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cookISO) == "" && strings.TrimSpace(prepISO) == "" {
		return "", nil
	}
	return domain.FormatISODuration(cook + prep), nil
}

// dedupIngredients trims entries, drops blanks, and deduplicates
// case-insensitively keeping the first spelling seen. Storage stays
// case-sensitive; ordering is applied on read.
func dedupIngredients(parts []string) []string {
	seen := make(map[string]bool, len(parts))
	var out []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := strings.ToLower(part)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, part)
	}
	return out
}

// ByID retrieves a single Recipe snapshot, with author name and sorted
// ingredients attached.
func (rg *recipeGorm) ByID(id int64) (*domain.Recipe, error) {
	if id <= 0 {
		return nil, errs.Errorf(errs.EINVALID, "Invalid recipe id.")
	}
	return loadRecipeSnapshot(rg.db, id)
}

// Create stores the recipe and its ingredient memberships in one
// transaction.
func (rg *recipeGorm) Create(recipe *domain.Recipe) error {
	return rg.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}
		return insertIngredients(tx, recipe.ID, recipe.Ingredients)
	})
}

// Delete removes the recipe record together with its ingredients, its
// reviews, and the likes of those reviews, in one transaction.
func (rg *recipeGorm) Delete(recipeID int64) error {
	return rg.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`DELETE FROM review_likes
			 WHERE review_id IN (SELECT id FROM reviews WHERE recipe_id = ?)`,
			recipeID).Error
		if err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&domain.Ingredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Recipe{}, "id = ?", recipeID).Error
	})
}

// UpdateTimes writes the three duration columns.
func (rg *recipeGorm) UpdateTimes(recipeID int64, cook, prep, total string) error {
	return rg.db.Model(&domain.Recipe{}).
		Where("id = ?", recipeID).
		Updates(map[string]interface{}{
			"cook_time":  cook,
			"prep_time":  prep,
			"total_time": total,
		}).Error
}

// Search retrieves one page of recipes matching the conjunctive filter:
// case-insensitive keyword substring on name or description, exact
// category, minimum aggregated rating. Recognized sort keys order by
// rating, date, or calories with NULLS LAST and descending-id tie-breaks;
// anything else falls back to ascending id. The total reflects the filter
// before paging.
func (rg *recipeGorm) Search(filter domain.RecipeFilter, sortKey string, page domain.Page) (*domain.PageResult[*domain.Recipe], error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}

	apply := func(q *gorm.DB) *gorm.DB {
		if filter.Keyword != nil {
			if kw := strings.TrimSpace(*filter.Keyword); kw != "" {
				pattern := "%" + strings.ToLower(kw) + "%"
				q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
			}
		}
		if filter.Category != nil {
			if c := strings.TrimSpace(*filter.Category); c != "" {
				q = q.Where("category = ?", c)
			}
		}
		if filter.MinRating != nil {
			q = q.Where("aggregated_rating >= ?", *filter.MinRating)
		}
		return q
	}

	var total int64
	if err := apply(rg.db.Model(&domain.Recipe{})).Count(&total).Error; err != nil {
		return nil, err
	}

	order := "id ASC"
	switch sortKey {
	case domain.RecipeSortRatingDesc:
		order = "aggregated_rating DESC NULLS LAST, id DESC"
	case domain.RecipeSortDateDesc:
		order = "date_published DESC NULLS LAST, id DESC"
	case domain.RecipeSortCaloriesAsc:
		order = "calories ASC NULLS LAST, id DESC"
	}

	var recipes []*domain.Recipe
	err := apply(rg.db.Model(&domain.Recipe{})).
		Order(order).
		Offset(page.Offset()).
		Limit(page.Size).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	if err := attachRecipeDetails(rg.db, recipes); err != nil {
		return nil, err
	}
	return newPageResult(recipes, page, total), nil
}

// Feed retrieves one page of recipes published by the users the caller
// follows, newest first with descending-id tie-breaks, optionally
// restricted to one category.
func (rg *recipeGorm) Feed(auth *domain.AuthInfo, category *string, page domain.Page) (*domain.PageResult[*domain.FeedItem], error) {
	userID, err := authenticate(rg.db, auth)
	if err != nil {
		return nil, err
	}
	if err := validatePage(page); err != nil {
		return nil, err
	}

	apply := func(q *gorm.DB) *gorm.DB {
		q = q.
			Joins("JOIN users ON users.id = recipes.author_id").
			Joins("JOIN follows ON follows.followee_id = recipes.author_id").
			Where("follows.follower_id = ?", userID)
		if category != nil {
			q = q.Where("recipes.category = ?", *category)
		}
		return q
	}

	var total int64
	if err := apply(rg.db.Table("recipes")).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []*domain.FeedItem
	err = apply(rg.db.Table("recipes")).
		Select(`recipes.id AS recipe_id, recipes.name AS name,
			recipes.author_id AS author_id, users.name AS author_name,
			recipes.date_published AS date_published,
			recipes.aggregated_rating AS aggregated_rating,
			recipes.review_count AS review_count`).
		Order("recipes.date_published DESC, recipes.id DESC").
		Offset(page.Offset()).
		Limit(page.Size).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return newPageResult(items, page, total), nil
}

// loadRecipeSnapshot loads a recipe row with its author name and its
// ingredient list in case-insensitive lexical order.
func loadRecipeSnapshot(db *gorm.DB, recipeID int64) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := db.First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Errorf(errs.ENOTFOUND, "The recipe does not exist.")
		}
		return nil, err
	}
	if err := attachRecipeDetails(db, []*domain.Recipe{&recipe}); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// attachRecipeDetails fills in the author name and the ordered ingredient
// list of each recipe.
func attachRecipeDetails(db *gorm.DB, recipes []*domain.Recipe) error {
	ids := make([]int64, 0, len(recipes))
	seen := make(map[int64]bool, len(recipes))
	for _, recipe := range recipes {
		if !seen[recipe.AuthorID] {
			seen[recipe.AuthorID] = true
			ids = append(ids, recipe.AuthorID)
		}
	}
	names, err := authorNames(db, ids)
	if err != nil {
		return err
	}
	for _, recipe := range recipes {
		recipe.AuthorName = names[recipe.AuthorID]
		err := db.Model(&domain.Ingredient{}).
			Where("recipe_id = ?", recipe.ID).
			Order("LOWER(ingredient) ASC").
			Pluck("ingredient", &recipe.Ingredients).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// authorNames resolves user ids to display names.
func authorNames(db *gorm.DB, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var users []domain.User
	err := db.Select("id", "name").Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		names[user.ID] = user.Name
	}
	return names, nil
}

// insertIngredients writes the membership pairs, tolerating duplicates at
// the storage level. The parts are stored sorted case-insensitively so
// bulk reads come back ordered even without the read-side ORDER BY.
func insertIngredients(tx *gorm.DB, recipeID int64, parts []string) error {
	if len(parts) == 0 {
		return nil
	}
	sorted := make([]string, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
	})
	rows := make([]domain.Ingredient, 0, len(sorted))
	for _, part := range sorted {
		rows = append(rows, domain.Ingredient{RecipeID: recipeID, Ingredient: part})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
