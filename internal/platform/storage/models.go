package storage

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an account that can authenticate against the platform.
type User struct {
	ID        uint      `gorm:"primaryKey"                             json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null"                               json:"-"`
	Name      string    `gorm:"type:varchar(255)"                      json:"name"`
	Role      string    `gorm:"type:varchar(32);default:'USER'"        json:"role"`
	Enabled   bool      `gorm:"default:true"                           json:"enabled"`
	CreatedAt time.Time `                                              json:"createdAt"`
	UpdatedAt time.Time `                                              json:"updatedAt"`
	Posts     []Post    `gorm:"foreignKey:AuthorID"                    json:"-"`
}

// Post is a blog entry. Tags are stored as a JSON array column.
type Post struct {
	ID          uint           `gorm:"primaryKey"                             json:"id"`
	AuthorID    uint           `gorm:"index;not null"                         json:"authorId"`
	Title       string         `gorm:"not null"                               json:"title"`
	Slug        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Body        string         `gorm:"type:text"                              json:"body"`
	Tags        datatypes.JSON `gorm:"type:text"                              json:"tags"`
	Published   bool           `gorm:"default:false;index"                    json:"published"`
	PublishedAt *time.Time     `                                              json:"publishedAt"`
	CreatedAt   time.Time      `                                              json:"createdAt"`
	UpdatedAt   time.Time      `                                              json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index"                                  json:"-"`
	Comments    []Comment      `gorm:"foreignKey:PostID"                      json:"-"`
}

// Comment is reader feedback on a post. Commenters are not accounts,
// so author identity is free-form.
type Comment struct {
	ID          uint           `gorm:"primaryKey"        json:"id"`
	PostID      uint           `gorm:"index;not null"    json:"postId"`
	AuthorName  string         `gorm:"type:varchar(255)" json:"authorName"`
	AuthorEmail string         `gorm:"type:varchar(255)" json:"authorEmail"`
	Body        string         `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time      `                          json:"createdAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index"              json:"-"`
}

// Subscriber is a mailing-list entry.
type Subscriber struct {
	ID        uint      `gorm:"primaryKey"                             json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Confirmed bool      `gorm:"default:false"                          json:"confirmed"`
	CreatedAt time.Time `                                              json:"createdAt"`
	UpdatedAt time.Time `                                              json:"updatedAt"`
}
