// Package client provides a Go client for the Feedwire API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"
)

// Client is a Feedwire API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
	UserID     int64
}

// Credentials holds a user's identity and password.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// New creates a new Feedwire client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Post represents a post from the API.
type Post struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl"`
	Creator   int64  `json:"creator"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// User represents a user from the API.
type User struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Posts []int64 `json:"posts"`
}

// Errors
var (
	ErrAlreadySignedUp = errors.New("email already registered")
)

// Signup creates a new account on the server.
func (c *Client) Signup(creds Credentials) (int64, error) {
	reqBody := map[string]string{
		"name":     creds.Name,
		"email":    creds.Email,
		"password": creds.Password,
	}
	body, _ := json.Marshal(reqBody)

	req, err := http.NewRequest(http.MethodPut, c.BaseURL+"/auth/signup", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnprocessableEntity &&
		bytes.Contains(respBody, []byte("email already exists")) {
		return 0, ErrAlreadySignedUp
	}
	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("signup failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		UserID int64 `json:"userId"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return 0, err
	}
	return result.UserID, nil
}

// Signin exchanges the credentials for a bearer token.
func (c *Client) Signin(creds Credentials) error {
	reqBody := map[string]string{
		"email":    creds.Email,
		"password": creds.Password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := c.HTTPClient.Post(c.BaseURL+"/auth/signin", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("signin failed (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Token  string `json:"token"`
		UserID int64  `json:"userId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	c.Token = result.Token
	c.UserID = result.UserID
	return nil
}

// SignupAndSignin is a convenience method that signs up (if needed) and
// signs in.
func (c *Client) SignupAndSignin(creds Credentials) error {
	_, err := c.Signup(creds)
	if err != nil && !errors.Is(err, ErrAlreadySignedUp) {
		return fmt.Errorf("signup: %w", err)
	}
	return c.Signin(creds)
}

// IsAuthenticated returns true if the client holds a token.
func (c *Client) IsAuthenticated() bool {
	return c.Token != ""
}

// doRequest performs an authenticated HTTP request with a JSON body.
func (c *Client) doRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

// doMultipart performs an authenticated request with a multipart body
// carrying the post fields and an optional image.
func (c *Client) doMultipart(method, path, title, content, imageName, imageType string, image []byte) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", title)
	_ = mw.WriteField("content", content)
	if image != nil {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, imageName))
		hdr.Set("Content-Type", imageType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(image); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(method, c.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return c.HTTPClient.Do(req)
}

// CreatePost creates a new post with an image attachment.
func (c *Client) CreatePost(title, content, imageName, imageType string, image []byte) (*Post, error) {
	resp, err := c.doMultipart(http.MethodPost, "/feed/create-post", title, content, imageName, imageType, image)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create post failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Post Post `json:"post"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result.Post, nil
}

// EditPost overwrites a post's title and content. Pass a nil image to
// keep the stored one.
func (c *Client) EditPost(id int64, title, content, imageName, imageType string, image []byte) (*Post, error) {
	path := fmt.Sprintf("/feed/edit-post/%d", id)
	resp, err := c.doMultipart(http.MethodPut, path, title, content, imageName, imageType, image)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("edit post failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Post Post `json:"post"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result.Post, nil
}

// GetPosts fetches one page of the feed.
func (c *Client) GetPosts(page int) ([]Post, error) {
	path := fmt.Sprintf("/feed/posts?page=%d", page)
	resp, err := c.doRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get posts failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Posts []Post `json:"posts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Posts, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(id int64) (*Post, error) {
	path := fmt.Sprintf("/feed/post/%d", id)
	resp, err := c.doRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get post failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Post Post `json:"post"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result.Post, nil
}

// DeletePost deletes a post and returns its final snapshot.
func (c *Client) DeletePost(id int64) (*Post, error) {
	path := fmt.Sprintf("/feed/delete-post/%d", id)
	resp, err := c.doRequest(http.MethodDelete, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("delete post failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Post Post `json:"post"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result.Post, nil
}

// TestHelper provides utilities for creating authenticated clients in tests.
type TestHelper struct {
	BaseURL string
}

// NewTestHelper creates a new test helper for the given base URL.
func NewTestHelper(baseURL string) *TestHelper {
	return &TestHelper{BaseURL: baseURL}
}

// CreateAuthenticatedClient signs up a user with the given name and
// returns a signed-in client. This is a convenience method for tests.
func (h *TestHelper) CreateAuthenticatedClient(name string) (*Client, Credentials, error) {
	creds := Credentials{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret-" + name,
	}
	c := New(h.BaseURL)
	if err := c.SignupAndSignin(creds); err != nil {
		return nil, Credentials{}, err
	}
	return c, creds, nil
}

// GetToken signs up a user (if needed) and returns a bearer token.
func (h *TestHelper) GetToken(name string) (string, error) {
	c, _, err := h.CreateAuthenticatedClient(name)
	if err != nil {
		return "", err
	}
	return c.Token, nil
}
