package model

import "time"

// User is an identity record. Posts holds the ids of the posts the user
// owns, in creation order; it is the back-reference list that create-post
// and delete-post keep in sync with the posts table.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Posts        []int64   `json:"posts"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Post is a content record owned by exactly one user.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"imageUrl"`
	Creator   int64     `json:"creator"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
