package models

// Group is a named community that posts can belong to. Groups are managed by
// operators; there is no public create endpoint.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:20;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`

	Posts []Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}
