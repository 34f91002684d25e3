package persistence

import (
	"strings"

	"github.com/ledgerbook/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeOperator returns a case-insensitive LIKE for the current dialect.
// sqlite's LIKE is already case-insensitive for ASCII.
func likeOperator(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

// searchCondition builds "(col1 ILIKE ? OR col2 ILIKE ? ...)" and its arguments.
// Wildcards typed by the user are matched literally.
func searchCondition(db *gorm.DB, term string, columns ...string) (string, []interface{}) {
	op := likeOperator(db)
	pattern := "%" + escapeLike(strings.TrimSpace(term)) + "%"
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		parts[i] = col + " " + op + ` ? ESCAPE '\'`
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// forUpdate adds a row lock on dialects that support it
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// applyDateRange restricts column to filter.DateFrom..filter.DateTo (inclusive)
func applyDateRange(query *gorm.DB, column string, filter shared.Filter) *gorm.DB {
	if filter.DateFrom != nil {
		query = query.Where(column+" >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where(column+" <= ?", *filter.DateTo)
	}
	return query
}

// applyPagination applies ordering and paging. A zero page size returns every row.
func applyPagination(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "")
	if field != "" {
		query = query.Order(clause.OrderByColumn{
			Column: clause.Column{Name: field},
			Desc:   ValidateSortOrder(filter.OrderDir) == "DESC",
		})
		// stable ordering for equal keys
		if field != "id" {
			query = query.Order("id ASC")
		}
	} else {
		query = query.Order(defaultOrder)
	}

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// filterString returns a non-empty string filter value
func filterString(filter shared.Filter, key string) (string, bool) {
	v, ok := filter.Filters[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, s != ""
	case interface{ String() string }:
		str := s.String()
		return str, str != ""
	}
	return "", false
}

// filterBool returns a boolean filter value, accepting bools and "true"/"false"
func filterBool(filter shared.Filter, key string) (bool, bool) {
	v, ok := filter.Filters[key]
	if !ok || v == nil {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(b) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return false, false
}
