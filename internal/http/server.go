package httpapp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mingle-social/mingle/internal/auth"
	"github.com/mingle-social/mingle/internal/config"
	"github.com/mingle-social/mingle/internal/media"
	"github.com/mingle-social/mingle/internal/model"
	"github.com/mingle-social/mingle/internal/rate"
	"github.com/mingle-social/mingle/internal/store"

	_ "github.com/mingle-social/mingle/docs" // swagger docs

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// maxBodyBytes caps request bodies; inline base64 images are the only large
// payloads and 10MB matches the upstream host's free-tier limit.
const maxBodyBytes = 10 << 20

type Server struct {
	store    store.Store
	auth     *auth.Service
	uploader media.Uploader
	limiter  rate.Limiter
	cfg      config.Config
}

func NewServer(st store.Store, authSvc *auth.Service, uploader media.Uploader, limiter rate.Limiter, cfg config.Config) *Server {
	return &Server{store: st, auth: authSvc, uploader: uploader, limiter: limiter, cfg: cfg}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	w.Header().Set("X-Request-Id", reqID)
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

	start := time.Now()
	s.route(sw, r)
	log.Printf("%s %s %s -> %d (%s)", reqID, r.Method, r.URL.Path, sw.status, time.Since(start).Round(time.Millisecond))
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Backend is running!"))
		return
	}
	if r.URL.Path == "/openapi.json" {
		s.serveOpenAPIJSON(w, r)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/swagger/") {
		httpSwagger.WrapHandler.ServeHTTP(w, r)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		s.handleAPI(w, r)
		return
	}
	notFound(w)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	if !s.allowRateLimit(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api")
	segments := splitPath(path)

	switch {
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "register":
		if r.Method == http.MethodPost {
			s.handleRegister(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "login":
		if r.Method == http.MethodPost {
			s.handleLogin(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "users":
		if r.Method == http.MethodGet {
			s.handleGetUser(w, r, segments[1])
			return
		}
	case len(segments) == 1 && segments[0] == "posts":
		if r.Method == http.MethodGet {
			s.handleListPosts(w, r)
			return
		}
		if r.Method == http.MethodPost {
			s.handleCreatePost(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "posts":
		if r.Method == http.MethodGet {
			s.handleGetPost(w, r, segments[1])
			return
		}
		if r.Method == http.MethodDelete {
			s.handleDeletePost(w, r, segments[1])
			return
		}
	case len(segments) == 3 && segments[0] == "posts" && segments[2] == "share":
		if r.Method == http.MethodPost {
			s.handleSharePost(w, r, segments[1])
			return
		}
	case len(segments) == 3 && segments[0] == "posts" && segments[2] == "like":
		if r.Method == http.MethodPost {
			s.handlePostLike(w, r, segments[1])
			return
		}
	case len(segments) == 2 && segments[0] == "comments":
		if r.Method == http.MethodGet {
			s.handleListComments(w, r, segments[1])
			return
		}
		if r.Method == http.MethodPost {
			s.handleCreateComment(w, r, segments[1])
			return
		}
	case len(segments) == 3 && segments[0] == "comments" && segments[2] == "like":
		if r.Method == http.MethodPost {
			s.handleCommentLike(w, r, segments[1])
			return
		}
	case len(segments) == 1 && segments[0] == "stories":
		if r.Method == http.MethodGet {
			s.handleListStories(w, r)
			return
		}
		if r.Method == http.MethodPost {
			s.handleCreateStory(w, r)
			return
		}
	default:
		notFound(w)
		return
	}
	methodNotAllowed(w)
}

type authResponse struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Token     string `json:"token"`
}

// handleRegister godoc
//
//	@Summary		Register a new user
//	@Description	Create a user with a unique email and receive a session token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			user	body		object{firstname=string,lastname=string,email=string,password=string}	true	"Registration data"
//	@Success		201		{object}	authResponse
//	@Failure		400		{object}	map[string]string	"Missing fields or email taken"
//	@Router			/api/auth/register [post]
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"firstname"`
		LastName  string `json:"lastname"`
		Email     string `json:"email"`
		Password  string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, errors.New("firstname, lastname, email and password are required"))
		return
	}

	digest, err := s.auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	user := model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Digest:    digest,
		CreatedAt: time.Now(),
	}
	id, err := s.store.CreateUser(r.Context(), &user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			writeError(w, http.StatusBadRequest, errors.New("user already exists"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	token, err := s.auth.IssueToken(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{
		ID:        id,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Token:     token,
	})
}

// handleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchange email and password for a session token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		object{email=string,password=string}	true	"Credentials"
//	@Success		200			{object}	authResponse
//	@Failure		401			{object}	map[string]string	"Invalid email or password"
//	@Router			/api/auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// A missing user and a wrong password are indistinguishable to the
	// caller.
	user, err := s.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, errors.New("invalid email or password"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !s.auth.CheckPassword(req.Password, user.Digest) {
		writeError(w, http.StatusUnauthorized, errors.New("invalid email or password"))
		return
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Token:     token,
	})
}

// handleGetUser godoc
//
//	@Summary	Get a user profile
//	@Tags		Users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	model.User
//	@Failure	404	{object}	map[string]string	"User not found"
//	@Router		/api/users/{id} [get]
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := s.requireAuth(w, r); !ok {
		return
	}
	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			writeError(w, http.StatusNotFound, errors.New("user not found"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleListPosts godoc
//
//	@Summary		List posts
//	@Description	Posts visible to the caller, newest first, with liker identities
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		model.Post
//	@Failure		401	{object}	map[string]string	"Authentication required"
//	@Router			/api/posts [get]
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	posts, err := s.store.ListPosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	// Privacy is decided here, not in the store query: "public", null, and
	// absent all mean public, which is simpler to state once in Visible
	// than across every query variant.
	visible := []model.Post{}
	for _, post := range posts {
		if !post.VisibleTo(user.ID) {
			continue
		}
		enriched, err := s.withLikeUsers(r.Context(), post)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		visible = append(visible, enriched)
	}
	writeJSON(w, http.StatusOK, visible)
}

// handleCreatePost godoc
//
//	@Summary		Create a post
//	@Description	Optionally uploads an inline base64 image before persisting; nothing is stored if the upload fails
//	@Tags			Posts
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			post	body		object{content=string,imageBase64=string,privacy=string}	true	"Post data"
//	@Success		201		{object}	model.Post
//	@Failure		400		{object}	map[string]string	"Validation or upload failure"
//	@Router			/api/posts [post]
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req struct {
		Content     string `json:"content"`
		ImageBase64 string `json:"imageBase64"`
		Privacy     string `json:"privacy"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	privacy, err := normalizePrivacy(req.Privacy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	imageURL, err := s.uploadIfPresent(r.Context(), req.ImageBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	post := model.Post{
		UserID:     user.ID,
		PosterName: user.DisplayName(),
		Content:    req.Content,
		Image:      imageURL,
		Privacy:    privacy,
		Likes:      []string{},
		CreatedAt:  time.Now(),
	}
	if _, err := s.store.CreatePost(r.Context(), &post); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// handleSharePost godoc
//
//	@Summary		Share a post
//	@Description	Clone another post's content as a new post referencing the original
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Post ID to share"
//	@Success		201	{object}	model.Post
//	@Failure		404	{object}	map[string]string	"Post not found"
//	@Router			/api/posts/{id}/share [post]
func (s *Server) handleSharePost(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	original, err := s.getPostOr404(w, r, id)
	if err != nil {
		return
	}

	shared := model.Post{
		UserID:     user.ID,
		PosterName: user.DisplayName(),
		Content:    original.Content,
		Image:      original.Image,
		SharedFrom: original.ID,
		Likes:      []string{},
		CreatedAt:  time.Now(),
	}
	if _, err := s.store.CreatePost(r.Context(), &shared); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, shared)
}

// handleGetPost godoc
//
//	@Summary		Get a post
//	@Description	Single post with liker identities. Private posts are only visible to their author; everyone else gets 404.
//	@Tags			Posts
//	@Produce		json
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	model.Post
//	@Failure		404	{object}	map[string]string	"Post not found"
//	@Router			/api/posts/{id} [get]
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request, id string) {
	post, err := s.getPostOr404(w, r, id)
	if err != nil {
		return
	}

	// Same predicate as the list read. An invisible post answers exactly
	// like a missing one so privacy does not leak existence.
	viewerID := ""
	if viewer := s.optionalAuth(r); viewer != nil {
		viewerID = viewer.ID
	}
	if !post.VisibleTo(viewerID) {
		writeError(w, http.StatusNotFound, errors.New("post not found"))
		return
	}

	enriched, err := s.withLikeUsers(r.Context(), post)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, enriched)
}

// handleDeletePost godoc
//
//	@Summary	Delete your own post
//	@Tags		Posts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Post ID"
//	@Success	200	{object}	map[string]string	"Success message"
//	@Failure	403	{object}	map[string]string	"Not the author"
//	@Failure	404	{object}	map[string]string	"Post not found"
//	@Router		/api/posts/{id} [delete]
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	post, err := s.getPostOr404(w, r, id)
	if err != nil {
		return
	}
	if post.UserID != user.ID {
		writeError(w, http.StatusForbidden, errors.New("only the author can delete a post"))
		return
	}
	if err := s.store.DeletePost(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "post removed"})
}

// handlePostLike godoc
//
//	@Summary		Toggle a like on a post
//	@Description	Adds the caller to the like-set, or removes them if already present
//	@Tags			Posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Post ID"
//	@Success		200	{object}	model.Post
//	@Failure		404	{object}	map[string]string	"Post not found"
//	@Router			/api/posts/{id}/like [post]
func (s *Server) handlePostLike(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	post, err := s.store.TogglePostLike(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			writeError(w, http.StatusNotFound, errors.New("post not found"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	enriched, err := s.withLikeUsers(r.Context(), post)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, enriched)
}

// handleListComments godoc
//
//	@Summary	List comments for a post
//	@Tags		Comments
//	@Produce	json
//	@Param		postId	path		string	true	"Post ID"
//	@Success	200		{array}		model.Comment
//	@Router		/api/comments/{postId} [get]
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request, postID string) {
	comments, err := s.store.ListCommentsByPost(r.Context(), postID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// handleCreateComment godoc
//
//	@Summary		Comment on a post
//	@Description	Optional parentCommentId threads the comment under another one
//	@Tags			Comments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			postId	path		string											true	"Post ID"
//	@Param			comment	body		object{content=string,parentCommentId=string}	true	"Comment data"
//	@Success		201		{object}	model.Comment
//	@Failure		400		{object}	map[string]string	"Missing content"
//	@Router			/api/comments/{postId} [post]
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request, postID string) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req struct {
		Content         string `json:"content"`
		ParentCommentID string `json:"parentCommentId"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, errors.New("content required"))
		return
	}

	comment := model.Comment{
		PostID:          postID,
		UserID:          user.ID,
		UserName:        user.DisplayName(),
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
		Likes:           []string{},
		CreatedAt:       time.Now(),
	}
	if _, err := s.store.CreateComment(r.Context(), &comment); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// handleCommentLike godoc
//
//	@Summary		Toggle a like on a comment
//	@Description	Returns the updated like-id list only
//	@Tags			Comments
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Comment ID"
//	@Success		200	{array}		string
//	@Failure		404	{object}	map[string]string	"Comment not found"
//	@Router			/api/comments/{id}/like [post]
func (s *Server) handleCommentLike(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	likes, err := s.store.ToggleCommentLike(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			writeError(w, http.StatusNotFound, errors.New("comment not found"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

// handleListStories godoc
//
//	@Summary	List stories visible to the caller
//	@Tags		Stories
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		model.Story
//	@Failure	401	{object}	map[string]string	"Authentication required"
//	@Router		/api/stories [get]
func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	stories, err := s.store.ListStories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	visible := []model.Story{}
	for _, story := range stories {
		if story.VisibleTo(user.ID) {
			visible = append(visible, story)
		}
	}
	writeJSON(w, http.StatusOK, visible)
}

// handleCreateStory godoc
//
//	@Summary		Create a story
//	@Description	Text and image are both optional; the image is uploaded before anything is persisted
//	@Tags			Stories
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			story	body		object{content=string,imageBase64=string,privacy=string}	true	"Story data"
//	@Success		201		{object}	model.Story
//	@Failure		400		{object}	map[string]string	"Validation or upload failure"
//	@Router			/api/stories [post]
func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	var req struct {
		Content     string `json:"content"`
		ImageBase64 string `json:"imageBase64"`
		Privacy     string `json:"privacy"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	privacy, err := normalizePrivacy(req.Privacy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	imageURL, err := s.uploadIfPresent(r.Context(), req.ImageBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	story := model.Story{
		UserID:    user.ID,
		UserName:  user.DisplayName(),
		Content:   req.Content,
		Image:     imageURL,
		Privacy:   privacy,
		CreatedAt: time.Now(),
	}
	if _, err := s.store.CreateStory(r.Context(), &story); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, story)
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write([]byte(doc))
}

// uploadIfPresent uploads inline image data and returns the hosted URL, or
// "" when no image was supplied. Upload happens before any persistence so a
// failed upload never leaves a record pointing at nothing.
func (s *Server) uploadIfPresent(ctx context.Context, base64Image string) (string, error) {
	if base64Image == "" {
		return "", nil
	}
	return s.uploader.Upload(ctx, base64Image)
}

func (s *Server) getPostOr404(w http.ResponseWriter, r *http.Request, id string) (model.Post, error) {
	post, err := s.store.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			writeError(w, http.StatusNotFound, errors.New("post not found"))
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}
		return model.Post{}, err
	}
	return post, nil
}

// withLikeUsers resolves the like-set to display identities. This is a
// read-side join; the like-set itself stays a list of ids.
func (s *Server) withLikeUsers(ctx context.Context, post model.Post) (model.Post, error) {
	likeUsers, err := s.store.ListUsersByIDs(ctx, post.Likes)
	if err != nil {
		return model.Post{}, err
	}
	post.LikeUsers = likeUsers
	return post, nil
}

func normalizePrivacy(privacy string) (string, error) {
	switch privacy {
	case "":
		return model.PrivacyPublic, nil
	case model.PrivacyPublic, model.PrivacyPrivate:
		return privacy, nil
	default:
		return "", errors.New("privacy must be public or private")
	}
}

func (s *Server) allowRateLimit(w http.ResponseWriter, r *http.Request) bool {
	rl := s.cfg.RateLimit
	if rl.Requests <= 0 {
		return true
	}
	key := "ip:" + s.clientIP(r)
	if ok, retry := s.limiter.Allow(key, rl.Requests, rl.Window); !ok {
		writeRateLimit(w, retry)
		return false
	}
	return true
}

// requireAuth is the request guard: it extracts the bearer token, verifies
// it, loads the acting user, and short-circuits with 401 on any failure.
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (model.User, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		writeError(w, http.StatusUnauthorized, auth.ErrUnauthenticated)
		return model.User{}, false
	}
	bearer := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	user, err := s.auth.Authenticate(r.Context(), bearer)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return model.User{}, false
	}
	return user, true
}

// optionalAuth returns the acting user when a valid token is present, nil
// otherwise. Public reads use it to apply the visibility filter.
func (s *Server) optionalAuth(r *http.Request) *model.User {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil
	}
	bearer := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	user, err := s.auth.Authenticate(r.Context(), bearer)
	if err != nil {
		return nil
	}
	return &user
}

func (s *Server) clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeRateLimit(w http.ResponseWriter, retry time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
	writeJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate limit exceeded",
		"retry_after": int(retry.Seconds()),
	})
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
