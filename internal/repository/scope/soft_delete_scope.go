package scope

import "gorm.io/gorm"

// WithSoftDelete includes soft deleted rows; used for hard deletes.
func WithSoftDelete(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// ExcludeSoftDelete is needed on raw Table() queries, which skip gorm's implicit filter.
func ExcludeSoftDelete(db *gorm.DB) *gorm.DB {
	return db.Where("documents.deleted_at IS NULL")
}
