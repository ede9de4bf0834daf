// Package query builds the filtered, ordered, paginated views shared by the
// account and organization registries. All conditions combine with AND; the
// total count is always taken against the filtered set before limit/offset
// are applied.
package query

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection normalizes a user-supplied sort direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(s) {
	case string(Asc):
		return Asc, true
	case string(Desc):
		return Desc, true
	}
	return "", false
}

// Sort is one ordering term. Terms are applied in the order declared.
type Sort struct {
	Column    string
	Direction Direction
}

// ContainsFold adds a case-insensitive substring match over the given
// columns, OR-combined. LOWER/LIKE rather than ILIKE so the same criteria
// run against both postgres and the sqlite test database.
func ContainsFold(db *gorm.DB, term string, columns ...string) *gorm.DB {
	if term == "" || len(columns) == 0 {
		return db
	}
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		conds[i] = fmt.Sprintf("LOWER(%s) LIKE ?", col)
		args[i] = "%" + strings.ToLower(term) + "%"
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

// DatePrefix matches on the date part of a timestamp column, ignoring
// time-of-day. Timestamps render with a leading YYYY-MM-DD in every dialect
// we target, so a text-cast prefix match is equivalent to comparing dates.
func DatePrefix(db *gorm.DB, column, prefix string) *gorm.DB {
	if prefix == "" {
		return db
	}
	return db.Where(fmt.Sprintf("CAST(%s AS TEXT) LIKE ?", column), prefix+"%")
}

// MinInt applies an inclusive lower bound when min is positive.
func MinInt(db *gorm.DB, column string, min int) *gorm.DB {
	if min <= 0 {
		return db
	}
	return db.Where(fmt.Sprintf("%s >= ?", column), min)
}

// MaxInt applies an inclusive upper bound when max is positive.
func MaxInt(db *gorm.DB, column string, max int) *gorm.DB {
	if max <= 0 {
		return db
	}
	return db.Where(fmt.Sprintf("%s <= ?", column), max)
}

// OrderBy applies the sort terms in declared order.
func OrderBy(db *gorm.DB, sorts []Sort) *gorm.DB {
	for _, s := range sorts {
		db = db.Order(s.Column + " " + string(s.Direction))
	}
	return db
}

// Pagination caps page size and selects a page. A non-positive limit means
// no limit; a non-positive page means no offset.
type Pagination struct {
	Limit int
	Page  int
}

func (p Pagination) Offset() int {
	if p.Limit <= 0 || p.Page <= 1 {
		return 0
	}
	return p.Limit * (p.Page - 1)
}

// Paginate counts the filtered set, then fetches one page into dest.
func Paginate(db *gorm.DB, p Pagination, dest interface{}) (int64, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return 0, err
	}
	if p.Limit > 0 {
		db = db.Limit(p.Limit).Offset(p.Offset())
	}
	if err := db.Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
