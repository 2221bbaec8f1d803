package store

import (
	"context"
	"errors"

	"github.com/mingle-social/mingle/internal/model"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidID      = errors.New("invalid id")
)

type Store interface {
	UserStore
	PostStore
	CommentStore
	StoryStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type UserStore interface {
	// CreateUser inserts a new user and returns its id. Fails with
	// ErrDuplicateEmail if the email is already registered.
	CreateUser(ctx context.Context, user *model.User) (string, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
	// ListUsersByIDs resolves like-set entries to display identities.
	// Unknown ids are silently skipped.
	ListUsersByIDs(ctx context.Context, ids []string) ([]model.LikeUser, error)
}

type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) (string, error)
	GetPost(ctx context.Context, id string) (model.Post, error)
	// ListPosts returns all posts newest first. Visibility filtering happens
	// in the handler, not here.
	ListPosts(ctx context.Context) ([]model.Post, error)
	DeletePost(ctx context.Context, id string) error
	// TogglePostLike flips userID's membership in the post's like-set using
	// an atomic set mutation and returns the updated post.
	TogglePostLike(ctx context.Context, id, userID string) (model.Post, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *model.Comment) (string, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error)
	// ToggleCommentLike flips userID's membership in the comment's like-set
	// and returns the updated like-id list.
	ToggleCommentLike(ctx context.Context, id, userID string) ([]string, error)
}

type StoryStore interface {
	CreateStory(ctx context.Context, story *model.Story) (string, error)
	// ListStories returns all stories newest first, unfiltered.
	ListStories(ctx context.Context) ([]model.Story, error)
}
