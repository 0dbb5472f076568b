package postgres

import (
	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/repositories"
)

// ApplyTaskFilters applies common filters to task queries
func ApplyTaskFilters(query *gorm.DB, filters repositories.TaskFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DueFrom != nil {
		query = query.Where("due_date >= ?", *filters.DueFrom)
	}
	if filters.DueTo != nil {
		query = query.Where("due_date <= ?", *filters.DueTo)
	}
	return query
}

// ApplyTaskSort applies sorting with SQL injection protection
func ApplyTaskSort(query *gorm.DB, sortBy string, desc bool) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"id":         true,
		"name":       true,
		"status":     true,
		"priority":   true,
		"due_date":   true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	order := "ASC"
	if desc {
		order = "DESC"
	}

	return query.Order(sortBy + " " + order)
}
