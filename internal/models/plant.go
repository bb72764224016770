package models

import "time"

// Plant is a catalog entry. ImagePath is stored as given (absolute URL or a
// server-relative path) and normalized on the way out.
type Plant struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	PlantName      string    `json:"plantName" gorm:"type:varchar(200);not null;index" bson:"plantName"`
	ScientificName string    `json:"scientificName" gorm:"type:varchar(200);not null;default:''" bson:"scientificName"`
	Description    string    `json:"description" gorm:"type:text" bson:"description"`
	Uses           string    `json:"uses" gorm:"type:text" bson:"uses"`
	ImagePath      string    `json:"imagePath" gorm:"type:text;not null" bson:"imagePath"`
	CreatedAt      time.Time `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`

	// SearchName is PlantName lowercased, for SQL stores whose LOWER() only
	// folds ASCII.
	SearchName string `json:"-" gorm:"type:varchar(200);not null;default:'';index" bson:"-"`
}

// PlantUpdate carries the mutable fields of a Plant. Nil means unchanged.
type PlantUpdate struct {
	PlantName      *string
	ScientificName *string
	Uses           *string
	Description    *string
}

// Empty reports whether the update changes nothing.
func (u PlantUpdate) Empty() bool {
	return u.PlantName == nil && u.ScientificName == nil && u.Uses == nil && u.Description == nil
}

// Apply copies the set fields onto p.
func (u PlantUpdate) Apply(p *Plant) {
	if u.PlantName != nil {
		p.PlantName = *u.PlantName
	}
	if u.ScientificName != nil {
		p.ScientificName = *u.ScientificName
	}
	if u.Uses != nil {
		p.Uses = *u.Uses
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
}
