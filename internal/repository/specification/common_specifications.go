package specification

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Equals matches one column. The column name is quoted by the dialect, never
// spliced into the SQL text.
type Equals struct {
	Column string
	Value  interface{}
}

func (s Equals) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(clause.Eq{Column: clause.Column{Name: s.Column}, Value: s.Value})
}

func Filter(column string, value interface{}) Specification {
	return Equals{Column: column, Value: value}
}

type OrderBy struct {
	Column string
	Desc   bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
}

// Page limits the result set; zero values leave the query unbounded.
type Page struct {
	Limit  int
	Offset int
}

func (s Page) Apply(db *gorm.DB) *gorm.DB {
	if s.Limit > 0 {
		db = db.Limit(s.Limit)
	}
	if s.Offset > 0 {
		db = db.Offset(s.Offset)
	}
	return db
}
