package httpapp

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/mingle-social/mingle/internal/model"
	"github.com/mingle-social/mingle/internal/store"
)

// memStore is an in-memory store.Store for handler tests. It honors the
// same contract as the real store: sentinel errors, newest-first post and
// story listings, oldest-first comments, and no visibility filtering.
type memStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]model.User
	posts    []model.Post
	comments []model.Comment
	stories  []model.Story
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]model.User)}
}

func (m *memStore) nextID() string {
	m.seq++
	return "id-" + strconv.Itoa(m.seq)
}

func (m *memStore) CreateUser(ctx context.Context, user *model.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return "", store.ErrDuplicateEmail
		}
	}
	user.ID = m.nextID()
	m.users[user.ID] = *user
	return user.ID, nil
}

func (m *memStore) GetUser(ctx context.Context, id string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, store.ErrNotFound
}

func (m *memStore) ListUsersByIDs(ctx context.Context, ids []string) ([]model.LikeUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.LikeUser{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, model.LikeUser{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName})
		}
	}
	return out, nil
}

func (m *memStore) CreatePost(ctx context.Context, post *model.Post) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = m.nextID()
	m.posts = append(m.posts, *post)
	return post.ID, nil
}

func (m *memStore) GetPost(ctx context.Context, id string) (model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Post{}, store.ErrNotFound
}

func (m *memStore) ListPosts(ctx context.Context) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Post, 0, len(m.posts))
	for i := len(m.posts) - 1; i >= 0; i-- {
		out = append(out, m.posts[i])
	}
	return out, nil
}

func (m *memStore) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memStore) TogglePostLike(ctx context.Context, id, userID string) (model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.posts {
		if p.ID == id {
			m.posts[i].Likes = toggle(p.Likes, userID)
			return m.posts[i], nil
		}
	}
	return model.Post{}, store.ErrNotFound
}

func (m *memStore) CreateComment(ctx context.Context, comment *model.Comment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment.ID = m.nextID()
	m.comments = append(m.comments, *comment)
	return comment.ID, nil
}

func (m *memStore) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) ToggleCommentLike(ctx context.Context, id, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.comments {
		if c.ID == id {
			m.comments[i].Likes = toggle(c.Likes, userID)
			return m.comments[i].Likes, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateStory(ctx context.Context, story *model.Story) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	story.ID = m.nextID()
	m.stories = append(m.stories, *story)
	return story.ID, nil
}

func (m *memStore) ListStories(ctx context.Context) ([]model.Story, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Story, 0, len(m.stories))
	for i := len(m.stories) - 1; i >= 0; i-- {
		out = append(out, m.stories[i])
	}
	return out, nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) Close(ctx context.Context) error { return nil }

func toggle(likes []string, userID string) []string {
	for i, id := range likes {
		if id == userID {
			return append(likes[:i:i], likes[i+1:]...)
		}
	}
	return append(likes, userID)
}

// fakeUploader records calls and returns a canned URL or error.
type fakeUploader struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, base64Image string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.url != "" {
		return f.url, nil
	}
	return "https://images.example.com/hosted.png", nil
}

type allowAllLimiter struct{}

func (allowAllLimiter) Allow(key string, limit int, window time.Duration) (bool, time.Duration) {
	return true, 0
}
