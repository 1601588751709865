package models

import "time"

// MaxCommentLength bounds comment text at the validation boundary.
const MaxCommentLength = 1000

// Comment is a reply to a post. Comments are immutable after creation and
// disappear with their post or author.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"size:1000;not null" json:"text"`
	Created  time.Time `gorm:"autoCreateTime;<-:create;index" json:"created"`
	PostID   uint      `gorm:"index;not null" json:"post_id"`
	AuthorID uint      `gorm:"index;not null" json:"author_id"`

	Post   Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author"`
}
