package persistent

import "gorm.io/gorm"

// Visibility selects rows by soft-delete state. Every read takes one explicitly.
type Visibility int

const (
	LiveOnly Visibility = iota
	DeletedOnly
	AnyState
)

func (v Visibility) String() string {
	switch v {
	case LiveOnly:
		return "live"
	case DeletedOnly:
		return "deleted"
	default:
		return "any"
	}
}

func (v Visibility) scope(db *gorm.DB) *gorm.DB {
	switch v {
	case LiveOnly:
		return db.Where("is_deleted = ?", false)
	case DeletedOnly:
		return db.Where("is_deleted = ?", true)
	default:
		return db
	}
}

type Pagination struct {
	Limit  int
	Offset int
}

func (p Pagination) scope(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

// NoPagination returns every matching row.
var NoPagination = Pagination{}
