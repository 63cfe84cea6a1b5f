package store

import (
	"context"
	"errors"

	"github.com/feedwire/feedwire/internal/model"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

type Store interface {
	UserStore
	PostStore
	Close() error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	FindUserByEmail(ctx context.Context, email string) (model.User, error)
	// UpdateUserPosts replaces the user's owned-post list. The read side of
	// the read-modify-write lives in the caller; concurrent writers are
	// last-write-wins.
	UpdateUserPosts(ctx context.Context, userID int64, posts []int64) error
}

type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) (int64, error)
	GetPost(ctx context.Context, id int64) (model.Post, error)
	// ListPosts returns the page-th slice (1-based) of posts in insertion
	// order. Pages past the end yield an empty slice, not an error.
	ListPosts(ctx context.Context, page, perPage int) ([]model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	// DeletePost removes the post and returns its last state.
	DeletePost(ctx context.Context, id int64) (model.Post, error)
}
