package database

import (
	"strings"

	"gorm.io/gorm"
)

// Paginate returns a GORM scope that applies offset/limit windowing.
// A non-positive limit falls back to 100; the window is capped at 1000 rows.
func Paginate(skip, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if skip < 0 {
			skip = 0
		}
		if limit <= 0 {
			limit = 100
		}
		if limit > 1000 {
			limit = 1000
		}
		return db.Offset(skip).Limit(limit)
	}
}

// Search returns a scope that matches the term case-insensitively against
// any of the given columns. An empty term leaves the query untouched.
// lower(...) LIKE works on both Postgres and SQLite, unlike ILIKE.
func Search(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + strings.ToLower(term) + "%"
		query := db.Session(&gorm.Session{NewDB: true})
		for _, col := range columns {
			query = query.Or("lower("+col+") LIKE ?", pattern)
		}
		return db.Where(query)
	}
}

// OrderBy returns a scope that sorts by a whitelisted column. Unknown
// columns fall back to the default so user input never reaches the SQL
// identifier position.
func OrderBy(sortBy, sortOrder string, allowed map[string]string, fallback string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		col, ok := allowed[sortBy]
		if !ok {
			col = fallback
		}
		dir := "asc"
		if strings.EqualFold(sortOrder, "desc") {
			dir = "desc"
		}
		return db.Order(col + " " + dir)
	}
}
