package model

import "time"

// Privacy values carried on posts and stories. An empty value means the
// document predates the privacy field (or the client omitted it) and is
// treated as public everywhere.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

type User struct {
	ID        string    `bson:"_id,omitempty" json:"_id"`
	FirstName string    `bson:"firstname" json:"firstname"`
	LastName  string    `bson:"lastname" json:"lastname"`
	Email     string    `bson:"email" json:"email"`
	Digest    string    `bson:"password" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// DisplayName is the name denormalized onto content at write time. Users are
// immutable after registration, so the stored copy never goes stale.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

type Post struct {
	ID         string     `bson:"_id,omitempty" json:"_id"`
	UserID     string     `bson:"userId" json:"userId"`
	PosterName string     `bson:"posterName" json:"posterName"`
	Content    string     `bson:"content" json:"content"`
	Image      string     `bson:"image,omitempty" json:"image,omitempty"`
	Privacy    string     `bson:"privacy,omitempty" json:"privacy,omitempty"`
	Likes      []string   `bson:"likes" json:"likes"`
	SharedFrom string     `bson:"sharedFrom,omitempty" json:"sharedFrom,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	LikeUsers  []LikeUser `bson:"-" json:"likeUsers,omitempty"`
}

type Comment struct {
	ID              string    `bson:"_id,omitempty" json:"_id"`
	PostID          string    `bson:"postId" json:"postId"`
	UserID          string    `bson:"userId" json:"userId"`
	UserName        string    `bson:"userName" json:"userName"`
	Content         string    `bson:"content" json:"content"`
	ParentCommentID string    `bson:"parentCommentId,omitempty" json:"parentCommentId,omitempty"`
	Likes           []string  `bson:"likes" json:"likes"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}

type Story struct {
	ID        string    `bson:"_id,omitempty" json:"_id"`
	UserID    string    `bson:"userId" json:"userId"`
	UserName  string    `bson:"userName" json:"userName"`
	Content   string    `bson:"content" json:"content"`
	Image     string    `bson:"image,omitempty" json:"image,omitempty"`
	Privacy   string    `bson:"privacy,omitempty" json:"privacy,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// LikeUser is the read-side projection joined onto like-sets.
type LikeUser struct {
	ID        string `bson:"_id" json:"_id"`
	FirstName string `bson:"firstname" json:"firstname"`
	LastName  string `bson:"lastname" json:"lastname"`
}

// Visible reports whether an item with the given privacy flag and author is
// visible to viewerID. viewerID may be empty for anonymous callers. Anything
// that is not explicitly private is public, including documents where the
// flag is absent entirely.
func Visible(privacy, authorID, viewerID string) bool {
	if privacy != PrivacyPrivate {
		return true
	}
	return viewerID != "" && viewerID == authorID
}

func (p Post) VisibleTo(viewerID string) bool {
	return Visible(p.Privacy, p.UserID, viewerID)
}

func (s Story) VisibleTo(viewerID string) bool {
	return Visible(s.Privacy, s.UserID, viewerID)
}
