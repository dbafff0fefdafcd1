package models

import "time"

// ForumCategory classifies a forum post.
type ForumCategory string

const (
	ForumGeneral    ForumCategory = "general"
	ForumPests      ForumCategory = "pests"
	ForumPricing    ForumCategory = "pricing"
	ForumTechniques ForumCategory = "techniques"
	ForumWeather    ForumCategory = "weather"
)

// ValidForumCategory reports whether c is one of the known categories.
func ValidForumCategory(c ForumCategory) bool {
	switch c {
	case ForumGeneral, ForumPests, ForumPricing, ForumTechniques, ForumWeather:
		return true
	}
	return false
}

// Comment is a reply on a forum post. Comments keep insertion order.
type Comment struct {
	ID        string    `json:"id" validate:"required"`
	Author    string    `json:"author" validate:"required"`
	Text      string    `json:"text" validate:"required"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	LikeCount int       `json:"likeCount" validate:"gte=0"`
}

// ForumPost is a threaded discussion entry. Deleting a post removes all of
// its comments with it.
type ForumPost struct {
	ID        string        `json:"id" validate:"required"`
	Author    string        `json:"author" validate:"required"`
	Title     string        `json:"title" validate:"required"`
	Body      string        `json:"body" validate:"required"`
	Category  ForumCategory `json:"category" validate:"required"`
	CreatedAt time.Time     `json:"createdAt" validate:"required"`
	LikeCount int           `json:"likeCount" validate:"gte=0"`
	Comments  []Comment     `json:"comments"`
}
