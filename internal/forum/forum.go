package forum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
	"github.com/kisanbazaar/kisan-bazaar/internal/storage"
	"github.com/kisanbazaar/kisan-bazaar/internal/validator"
)

// ErrNotFound is returned when a post or comment id does not exist.
var ErrNotFound = errors.New("forum entry not found")

// PostInput is the payload for creating a post.
type PostInput struct {
	Author   string `json:"author" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Body     string `json:"body" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// EditInput is the payload for editing a post's title and body.
type EditInput struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

// Service manages the community discussion board on top of the persistent
// store. Posts live under a single key as one JSON document, newest first.
type Service struct {
	store    storage.Store
	validate *validator.Validator
	seed     bool
	now      func() time.Time
}

// NewService builds a forum Service. When seed is true an empty board is
// hydrated with the two starter discussions.
func NewService(store storage.Store, v *validator.Validator, seed bool) *Service {
	return &Service{store: store, validate: v, seed: seed, now: time.Now}
}

// List returns posts newest first, optionally filtered by category. An
// unknown or empty category returns every post.
func (s *Service) List(ctx context.Context, category string) ([]models.ForumPost, error) {
	posts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" || category == "all" {
		return posts, nil
	}
	filtered := make([]models.ForumPost, 0, len(posts))
	for _, p := range posts {
		if string(p.Category) == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Get returns a single post by id.
func (s *Service) Get(ctx context.Context, id string) (models.ForumPost, error) {
	posts, err := s.load(ctx)
	if err != nil {
		return models.ForumPost{}, err
	}
	for _, p := range posts {
		if p.ID == id {
			return p, nil
		}
	}
	return models.ForumPost{}, ErrNotFound
}

// Create validates the input and prepends the new post.
func (s *Service) Create(ctx context.Context, in PostInput) (models.ForumPost, error) {
	if err := s.validate.ValidateStruct(in); err != nil {
		return models.ForumPost{}, err
	}
	category := models.ForumCategory(in.Category)
	if !models.ValidForumCategory(category) {
		return models.ForumPost{}, fmt.Errorf("unknown forum category %q", in.Category)
	}

	posts, err := s.load(ctx)
	if err != nil {
		return models.ForumPost{}, err
	}

	post := models.ForumPost{
		ID:        s.newID(posts),
		Author:    in.Author,
		Title:     in.Title,
		Body:      in.Body,
		Category:  category,
		CreatedAt: s.now(),
		Comments:  []models.Comment{},
	}
	posts = append([]models.ForumPost{post}, posts...)

	if err := s.save(ctx, posts); err != nil {
		return models.ForumPost{}, err
	}
	return post, nil
}

// Edit replaces the title and body of an existing post.
func (s *Service) Edit(ctx context.Context, id string, in EditInput) (models.ForumPost, error) {
	if err := s.validate.ValidateStruct(in); err != nil {
		return models.ForumPost{}, err
	}

	posts, err := s.load(ctx)
	if err != nil {
		return models.ForumPost{}, err
	}
	for i := range posts {
		if posts[i].ID == id {
			posts[i].Title = in.Title
			posts[i].Body = in.Body
			if err := s.save(ctx, posts); err != nil {
				return models.ForumPost{}, err
			}
			return posts[i], nil
		}
	}
	return models.ForumPost{}, ErrNotFound
}

// Delete removes a post and all of its comments.
func (s *Service) Delete(ctx context.Context, id string) error {
	posts, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range posts {
		if posts[i].ID == id {
			posts = append(posts[:i], posts[i+1:]...)
			return s.save(ctx, posts)
		}
	}
	return ErrNotFound
}

// AddComment appends a comment to a post.
func (s *Service) AddComment(ctx context.Context, postID, author, text string) (models.Comment, error) {
	if author == "" || text == "" {
		return models.Comment{}, fmt.Errorf("comment author and text are required")
	}

	posts, err := s.load(ctx)
	if err != nil {
		return models.Comment{}, err
	}
	for i := range posts {
		if posts[i].ID == postID {
			comment := models.Comment{
				ID:        s.newCommentID(posts[i].Comments),
				Author:    author,
				Text:      text,
				CreatedAt: s.now(),
			}
			posts[i].Comments = append(posts[i].Comments, comment)
			if err := s.save(ctx, posts); err != nil {
				return models.Comment{}, err
			}
			return comment, nil
		}
	}
	return models.Comment{}, ErrNotFound
}

// DeleteComment removes a single comment from a post.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID string) error {
	posts, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range posts {
		if posts[i].ID != postID {
			continue
		}
		for j := range posts[i].Comments {
			if posts[i].Comments[j].ID == commentID {
				posts[i].Comments = append(posts[i].Comments[:j], posts[i].Comments[j+1:]...)
				return s.save(ctx, posts)
			}
		}
		return ErrNotFound
	}
	return ErrNotFound
}

// LikePost increments a post's like counter. Every call counts.
func (s *Service) LikePost(ctx context.Context, id string) (int, error) {
	posts, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	for i := range posts {
		if posts[i].ID == id {
			posts[i].LikeCount++
			if err := s.save(ctx, posts); err != nil {
				return 0, err
			}
			return posts[i].LikeCount, nil
		}
	}
	return 0, ErrNotFound
}

// LikeComment increments a comment's like counter. Every call counts.
func (s *Service) LikeComment(ctx context.Context, postID, commentID string) (int, error) {
	posts, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	for i := range posts {
		if posts[i].ID != postID {
			continue
		}
		for j := range posts[i].Comments {
			if posts[i].Comments[j].ID == commentID {
				posts[i].Comments[j].LikeCount++
				if err := s.save(ctx, posts); err != nil {
					return 0, err
				}
				return posts[i].Comments[j].LikeCount, nil
			}
		}
		return 0, ErrNotFound
	}
	return 0, ErrNotFound
}

// load reads the stored board, seeding starter posts on first access when
// seeding is enabled.
func (s *Service) load(ctx context.Context) ([]models.ForumPost, error) {
	raw, err := s.store.Get(ctx, storage.KeyForumPosts)
	if errors.Is(err, storage.ErrNotFound) {
		if !s.seed {
			return []models.ForumPost{}, nil
		}
		posts := seedPosts(s.now())
		if err := s.save(ctx, posts); err != nil {
			return nil, err
		}
		return posts, nil
	}
	if err != nil {
		return nil, err
	}

	var posts []models.ForumPost
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, &storage.DecodeError{Key: storage.KeyForumPosts, Err: err}
	}
	for _, p := range posts {
		if err := s.validate.ValidateStruct(p); err != nil {
			return nil, &storage.DecodeError{Key: storage.KeyForumPosts, Err: err}
		}
	}
	return posts, nil
}

func (s *Service) save(ctx context.Context, posts []models.ForumPost) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to encode forum posts: %w", err)
	}
	return s.store.Set(ctx, storage.KeyForumPosts, raw)
}

// newID returns a millisecond timestamp id, bumped past any collision with an
// existing post.
func (s *Service) newID(posts []models.ForumPost) string {
	ms := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		taken := false
		for _, p := range posts {
			if p.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		ms++
	}
}

// newCommentID is newID for a post's comment thread.
func (s *Service) newCommentID(comments []models.Comment) string {
	ms := s.now().UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		taken := false
		for _, c := range comments {
			if c.ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		ms++
	}
}

// seedPosts returns the two starter discussions shown on a fresh board.
func seedPosts(now time.Time) []models.ForumPost {
	return []models.ForumPost{
		{
			ID:       "1",
			Author:   "Farmer Ahmed",
			Title:    "Best time to plant tomatoes?",
			Body:     "I want to plant tomatoes next month. What is the best time and any tips?",
			Category: models.ForumTechniques,
			// One day old so it sorts ahead of the older pest thread.
			CreatedAt: now.Add(-24 * time.Hour),
			LikeCount: 12,
			Comments: []models.Comment{
				{
					ID:        "c1",
					Author:    "Farmer Hassan",
					Text:      "Spring is the best season. Ensure good drainage.",
					CreatedAt: now.Add(-time.Hour),
					LikeCount: 5,
				},
			},
		},
		{
			ID:        "2",
			Author:    "Farmer Fatima",
			Title:     "Dealing with crop pests",
			Body:      "My vegetables are being attacked by insects. What natural solutions work best?",
			Category:  models.ForumPests,
			CreatedAt: now.Add(-48 * time.Hour),
			LikeCount: 8,
			Comments:  []models.Comment{},
		},
	}
}
