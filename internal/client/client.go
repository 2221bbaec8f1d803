// Package client provides a Go client for the Mingle API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mingle-social/mingle/internal/model"
)

// Client is a Mingle API client. Token, once set, is sent as a bearer
// credential on every request.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// New creates a new Mingle client.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Session is the response to register and login calls.
type Session struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Token     string `json:"token"`
}

// Register creates an account and stores its token on the client.
func (c *Client) Register(firstName, lastName, email, password string) (*Session, error) {
	body := map[string]string{
		"firstname": firstName,
		"lastname":  lastName,
		"email":     email,
		"password":  password,
	}
	var session Session
	if err := c.do(http.MethodPost, "/api/auth/register", body, &session); err != nil {
		return nil, err
	}
	c.Token = session.Token
	return &session, nil
}

// Login authenticates and stores the token on the client.
func (c *Client) Login(email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session Session
	if err := c.do(http.MethodPost, "/api/auth/login", body, &session); err != nil {
		return nil, err
	}
	c.Token = session.Token
	return &session, nil
}

// GetUser fetches a user profile.
func (c *Client) GetUser(id string) (*model.User, error) {
	var user model.User
	if err := c.do(http.MethodGet, "/api/users/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreatePost creates a post. imageBase64 and privacy may be empty.
func (c *Client) CreatePost(content, imageBase64, privacy string) (*model.Post, error) {
	body := map[string]string{
		"content":     content,
		"imageBase64": imageBase64,
		"privacy":     privacy,
	}
	var post model.Post
	if err := c.do(http.MethodPost, "/api/posts", body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts returns the posts visible to the caller, newest first.
func (c *Client) ListPosts() ([]model.Post, error) {
	var posts []model.Post
	if err := c.do(http.MethodGet, "/api/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(id string) (*model.Post, error) {
	var post model.Post
	if err := c.do(http.MethodGet, "/api/posts/"+id, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes one of the caller's own posts.
func (c *Client) DeletePost(id string) error {
	return c.do(http.MethodDelete, "/api/posts/"+id, nil, nil)
}

// SharePost clones another post as a new post by the caller.
func (c *Client) SharePost(id string) (*model.Post, error) {
	var post model.Post
	if err := c.do(http.MethodPost, "/api/posts/"+id+"/share", nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// LikePost toggles the caller's like on a post and returns the updated post.
func (c *Client) LikePost(id string) (*model.Post, error) {
	var post model.Post
	if err := c.do(http.MethodPost, "/api/posts/"+id+"/like", nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetComments lists a post's comments, oldest first.
func (c *Client) GetComments(postID string) ([]model.Comment, error) {
	var comments []model.Comment
	if err := c.do(http.MethodGet, "/api/comments/"+postID, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// CreateComment comments on a post. parentCommentID may be empty for a
// top-level comment.
func (c *Client) CreateComment(postID, content, parentCommentID string) (*model.Comment, error) {
	body := map[string]string{
		"content":         content,
		"parentCommentId": parentCommentID,
	}
	var comment model.Comment
	if err := c.do(http.MethodPost, "/api/comments/"+postID, body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// LikeComment toggles the caller's like on a comment and returns the updated
// like-id list.
func (c *Client) LikeComment(id string) ([]string, error) {
	var likes []string
	if err := c.do(http.MethodPost, "/api/comments/"+id+"/like", nil, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

// GetStories returns the stories visible to the caller.
func (c *Client) GetStories() ([]model.Story, error) {
	var stories []model.Story
	if err := c.do(http.MethodGet, "/api/stories", nil, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// CreateStory creates a story. imageBase64 and privacy may be empty.
func (c *Client) CreateStory(content, imageBase64, privacy string) (*model.Story, error) {
	body := map[string]string{
		"content":     content,
		"imageBase64": imageBase64,
		"privacy":     privacy,
	}
	var story model.Story
	if err := c.do(http.MethodPost, "/api/stories", body, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

// do issues a request and decodes the response into out when out is non-nil.
// Non-2xx responses become errors carrying the server's error message.
func (c *Client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
