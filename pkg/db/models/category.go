package models

import "time"

// Category is a node in the catalog tree. IDs come from the upstream
// inventory system, so they are assigned, not generated.
type Category struct {
	ID        int64      `gorm:"column:id;primaryKey"`
	Name      string     `gorm:"column:name;not null"`
	ParentID  *int64     `gorm:"column:parent_id"`
	Image     *string    `gorm:"column:image"`
	Children  []Category `gorm:"foreignKey:ParentID"`
	Products  []Product  `gorm:"foreignKey:CategoryID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsRoot reports whether the category sits at the top of the tree.
func (c Category) IsRoot() bool {
	return c.ParentID == nil
}
