package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Category struct {
	ID          gocql.UUID  `json:"id" db:"category_id"`
	Name        string      `json:"name" db:"name"`
	Slug        string      `json:"slug" db:"slug"`
	Description string      `json:"description" db:"description"`
	Icon        string      `json:"icon,omitempty" db:"icon"`
	ParentID    *gocql.UUID `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt   *time.Time  `json:"created_at,omitempty" db:"created_at"`
}
