package models

import "time"

// Follow is a directed edge meaning UserID's feed includes AuthorID's posts.
// The composite unique index makes following idempotent per (follower, author)
// pair; the check constraint is the last line of defense against self-follows,
// which handlers short-circuit before reaching the database.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_follows_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;index;uniqueIndex:idx_follows_user_author;check:chk_follows_no_self,user_id <> author_id" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
