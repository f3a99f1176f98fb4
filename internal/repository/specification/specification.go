package specification

import "gorm.io/gorm"

// Specification is a composable query fragment. Repositories accept any
// number of them and apply each to the base query in order.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
