package specification

import (
	"gorm.io/gorm"
)

// ByID filters by primary key (24-char hex)
type ByID struct {
	ID string
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}
