package crud

import (
	"tastebook/domain"
	"tastebook/errs"
)

// validatePage enforces the shared paging contract of all listing
// operations: pages are 1-based, the size must be positive.
func validatePage(p domain.Page) error {
	if p.Number < 1 {
		return errs.Errorf(errs.EINVALID, "Page must be >= 1.")
	}
	if p.Size < 1 {
		return errs.Errorf(errs.EINVALID, "Page size must be > 0.")
	}
	return nil
}

// newPageResult assembles one listing page. Total is the row count of the
// filter predicate before paging.
func newPageResult[T any](items []T, p domain.Page, total int64) *domain.PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return &domain.PageResult[T]{
		Items: items,
		Page:  p.Number,
		Size:  p.Size,
		Total: total,
	}
}
