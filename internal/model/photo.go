package model

import "time"

// Photo is one captured photobooth picture as stored in the photos table.
// Records are created by the booth client; this service only reads them,
// flips Printed and deletes them.
type Photo struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	ImageData string    `gorm:"type:text;not null" json:"image_data"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	Printed   bool      `gorm:"not null;default:false" json:"printed"`
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}
