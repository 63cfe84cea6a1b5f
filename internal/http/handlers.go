package httpapp

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/feedwire/feedwire/internal/model"
	"github.com/feedwire/feedwire/internal/store"
	"github.com/feedwire/feedwire/internal/upload"
	"github.com/feedwire/feedwire/internal/validate"
)

// postsPerPage is the fixed feed page size.
const postsPerPage = 2

// handleSignup godoc
//
//	@Summary		Register a new user
//	@Description	Create a user account with a unique email address.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			user	body		object{name=string,email=string,password=string}	true	"Signup data"
//	@Success		201		{object}	map[string]any		"New user id"
//	@Failure		422		{object}	map[string]any		"Validation failed"
//	@Router			/auth/signup [put]
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		s.writeError(w, errValidation([]validate.Violation{
			{Field: "body", Message: "invalid request body"},
		}))
		return
	}

	fields := map[string]string{"name": req.Name, "email": req.Email, "password": req.Password}
	if violations := validate.Run(fields, validate.SignupRules()); len(violations) > 0 {
		s.writeError(w, errValidation(violations))
		return
	}

	hash, err := s.auth.HashPassword(fields["password"])
	if err != nil {
		s.writeError(w, errInternal(err))
		return
	}
	user := model.User{
		Name:         fields["name"],
		Email:        fields["email"],
		PasswordHash: hash,
		Posts:        []int64{},
		CreatedAt:    time.Now(),
	}
	id, err := s.store.CreateUser(r.Context(), &user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			s.writeError(w, errValidation([]validate.Violation{
				{Field: "email", Message: "email already exists", Value: fields["email"]},
			}))
			return
		}
		s.writeError(w, errInternal(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully.",
		"userId":  id,
	})
}

// handleSignin godoc
//
//	@Summary		Sign in
//	@Description	Exchange email and password for a bearer token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		object{email=string,password=string}	true	"Credentials"
//	@Success		200			{object}	map[string]any		"Token and user id"
//	@Failure		401			{object}	map[string]any		"Invalid credentials"
//	@Failure		422			{object}	map[string]any		"Validation failed"
//	@Router			/auth/signin [post]
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		s.writeError(w, errValidation([]validate.Violation{
			{Field: "body", Message: "invalid request body"},
		}))
		return
	}

	fields := map[string]string{"email": req.Email, "password": req.Password}
	if violations := validate.Run(fields, validate.SigninRules()); len(violations) > 0 {
		s.writeError(w, errValidation(violations))
		return
	}

	// Unknown email and wrong password produce the same response.
	user, err := s.store.FindUserByEmail(r.Context(), fields["email"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, errInvalidCredentials())
			return
		}
		s.writeError(w, errInternal(err))
		return
	}
	if !s.auth.CheckPassword(user.PasswordHash, fields["password"]) {
		s.writeError(w, errInvalidCredentials())
		return
	}

	token, _, err := s.auth.IssueToken(user.ID, user.Email)
	if err != nil {
		s.writeError(w, errInternal(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"userId": user.ID,
	})
}

// handleListPosts godoc
//
//	@Summary		List posts
//	@Description	Get one page of the feed in insertion order (2 posts per page).
//	@Tags			Feed
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int	false	"1-based page number"	default(1)
//	@Success		200		{object}	map[string]any		"Posts page"
//	@Failure		401		{object}	map[string]any		"Not authenticated"
//	@Router			/feed/posts [get]
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}

	page := parseIntDefault(r.URL.Query().Get("page"), 1)
	if page < 1 {
		page = 1
	}
	posts, err := s.store.ListPosts(r.Context(), page, postsPerPage)
	if err != nil {
		s.writeError(w, errInternal(err))
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// handleGetPost godoc
//
//	@Summary		Get a post
//	@Description	Fetch a single post by id.
//	@Tags			Feed
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Post id"
//	@Success		200	{object}	map[string]any		"Post"
//	@Failure		401	{object}	map[string]any		"Not authenticated"
//	@Failure		404	{object}	map[string]any		"Post not found"
//	@Router			/feed/post/{id} [get]
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request, idStr string) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}

	id, ok := parseID(idStr)
	if !ok {
		s.writeError(w, errNotFound("There is no post with this id"))
		return
	}
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		s.writeError(w, fromStoreErr(err, "There is no post with this id"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": post})
}

// handleCreatePost godoc
//
//	@Summary		Create a post
//	@Description	Create a new post with a required image attachment.
//	@Tags			Feed
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			title	formData	string	true	"Title (min 5 chars)"
//	@Param			content	formData	string	true	"Content (min 5 chars)"
//	@Param			image	formData	file	true	"Image (png/jpg/jpeg)"
//	@Success		201		{object}	map[string]any		"Post and updated creator"
//	@Failure		401		{object}	map[string]any		"Not authenticated"
//	@Failure		422		{object}	map[string]any		"Validation failed or image missing"
//	@Router			/feed/create-post [post]
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	fields := parsePostFields(r)
	if violations := validate.Run(fields, validate.PostRules()); len(violations) > 0 {
		s.writeError(w, errValidation(violations))
		return
	}
	image := acceptedImage(r)
	if image == nil {
		s.writeError(w, errMissingImage())
		return
	}

	verified, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	post, creator, appErr := s.createPost(r.Context(), verified.UserID, fields["title"], fields["content"], image)
	if appErr != nil {
		s.writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Post Created successfully",
		"post":    post,
		"creator": creator,
	})
}

// createPost persists the post, then appends its id to the owner's list.
// The two writes are not atomic: a failure after the first leaves an
// orphaned post, which is the documented trade-off of this pipeline.
func (s *Server) createPost(ctx context.Context, userID int64, title, content string, image *multipart.FileHeader) (model.Post, model.User, *Error) {
	name, err := s.saver.Save(image)
	if err != nil {
		return model.Post{}, model.User{}, errInternal(err)
	}

	now := time.Now()
	post := model.Post{
		Title:     title,
		Content:   content,
		ImageURL:  "images/" + name,
		Creator:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.store.CreatePost(ctx, &post)
	if err != nil {
		return model.Post{}, model.User{}, errInternal(err)
	}
	post.ID = id

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return model.Post{}, model.User{}, errInternal(err)
	}
	user.Posts = append(user.Posts, id)
	if err := s.store.UpdateUserPosts(ctx, userID, user.Posts); err != nil {
		return model.Post{}, model.User{}, errInternal(err)
	}
	return post, user, nil
}

// handleEditPost godoc
//
//	@Summary		Edit a post
//	@Description	Overwrite a post's title and content; replace the image only when a new one is attached.
//	@Tags			Feed
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int		true	"Post id"
//	@Param			title	formData	string	true	"Title (min 5 chars)"
//	@Param			content	formData	string	true	"Content (min 5 chars)"
//	@Param			image	formData	file	false	"Replacement image (png/jpg/jpeg)"
//	@Success		202		{object}	map[string]any		"Updated post"
//	@Failure		401		{object}	map[string]any		"Not authenticated"
//	@Failure		404		{object}	map[string]any		"Post not found"
//	@Failure		422		{object}	map[string]any		"Validation failed"
//	@Router			/feed/edit-post/{id} [put]
func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request, idStr string) {
	fields := parsePostFields(r)
	if violations := validate.Run(fields, validate.PostRules()); len(violations) > 0 {
		s.writeError(w, errValidation(violations))
		return
	}
	image := acceptedImage(r)

	if _, ok := s.requireAuth(w, r); !ok {
		return
	}

	id, ok := parseID(idStr)
	if !ok {
		s.writeError(w, errNotFound("There is no post with this id"))
		return
	}

	post, appErr := s.editPost(r.Context(), id, fields["title"], fields["content"], image)
	if appErr != nil {
		s.writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"message": "Post Updated successfully.",
		"post":    post,
	})
}

func (s *Server) editPost(ctx context.Context, id int64, title, content string, image *multipart.FileHeader) (model.Post, *Error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return model.Post{}, fromStoreErr(err, "There is no post with this id")
	}

	post.Title = title
	post.Content = content
	if image != nil {
		name, err := s.saver.Save(image)
		if err != nil {
			return model.Post{}, errInternal(err)
		}
		post.ImageURL = "images/" + name
	}
	post.UpdatedAt = time.Now()

	if err := s.store.UpdatePost(ctx, &post); err != nil {
		return model.Post{}, fromStoreErr(err, "There is no post with this id")
	}
	return post, nil
}

// handleDeletePost godoc
//
//	@Summary		Delete a post
//	@Description	Remove a post and drop its id from the owner's post list.
//	@Tags			Feed
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Post id"
//	@Success		200	{object}	map[string]any		"Removed post snapshot"
//	@Failure		401	{object}	map[string]any		"Not authenticated"
//	@Failure		404	{object}	map[string]any		"Post not found"
//	@Router			/feed/delete-post/{id} [delete]
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, idStr string) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}

	id, ok := parseID(idStr)
	if !ok {
		s.writeError(w, errNotFound("There is no post with this id"))
		return
	}

	post, appErr := s.deletePost(r.Context(), id)
	if appErr != nil {
		s.writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "delete post done successfully.",
		"post":    post,
	})
}

// deletePost removes the post first, then the owner's back-reference. A
// failure after the removal leaves a dangling id in the owner's list;
// like createPost, the gap is accepted rather than wrapped in a
// cross-record transaction.
func (s *Server) deletePost(ctx context.Context, id int64) (model.Post, *Error) {
	post, err := s.store.DeletePost(ctx, id)
	if err != nil {
		return model.Post{}, fromStoreErr(err, "There is no post with this id")
	}

	user, err := s.store.GetUser(ctx, post.Creator)
	if err != nil {
		return model.Post{}, errInternal(err)
	}
	remaining := user.Posts[:0]
	for _, postID := range user.Posts {
		if postID != id {
			remaining = append(remaining, postID)
		}
	}
	if err := s.store.UpdateUserPosts(ctx, user.ID, remaining); err != nil {
		return model.Post{}, errInternal(err)
	}
	return post, nil
}

// parsePostFields extracts title and content from a multipart or
// urlencoded body. Parse failures surface as empty fields and fail the
// validation rules.
func parsePostFields(r *http.Request) map[string]string {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			_ = r.ParseForm()
		}
	}
	return map[string]string{
		"title":   r.FormValue("title"),
		"content": r.FormValue("content"),
	}
}

// acceptedImage returns the uploaded image file header, or nil when no
// file arrived or its MIME type is not an allowed image type. Disallowed
// types are dropped silently.
func acceptedImage(r *http.Request) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil
	}
	header := files[0]
	if !upload.Accepted(header) {
		return nil
	}
	return header
}
