package specification

import "gorm.io/gorm"

// Specification narrows, orders or pages a gorm query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// ApplyAll folds specs over db in the order given; nil entries are skipped.
func ApplyAll(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		if spec != nil {
			db = spec.Apply(db)
		}
	}
	return db
}
