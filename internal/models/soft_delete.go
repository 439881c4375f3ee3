package models

import "gorm.io/gorm"

// IsActive is the single "not soft-deleted" predicate shared by every entity.
func IsActive(deletedAt gorm.DeletedAt) bool {
	return !deletedAt.Valid
}
