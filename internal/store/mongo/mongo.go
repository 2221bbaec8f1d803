// Package mongo implements store.Store on top of a MongoDB database.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mingle-social/mingle/internal/model"
	"github.com/mingle-social/mingle/internal/store"
)

type Store struct {
	client  *mongo.Client
	timeout time.Duration

	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
	stories  *mongo.Collection
}

// Open connects, pings, and ensures indexes. It returns only once the
// database is reachable, so handlers constructed afterwards never see a
// half-initialized store.
func Open(ctx context.Context, uri, dbName string, timeout time.Duration) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	db := client.Database(dbName)
	s := &Store{
		client:   client,
		timeout:  timeout,
		users:    db.Collection("users"),
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
		stories:  db.Collection("stories"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return err
	}
	_, err = s.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "postId", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = s.stories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// bound caps every store operation so a stalled database cannot hold a
// request open past the configured timeout.
func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrInvalidID
	}
	return oid, nil
}

// userDoc mirrors model.User with a native ObjectID _id.
type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FirstName string             `bson:"firstname"`
	LastName  string             `bson:"lastname"`
	Email     string             `bson:"email"`
	Digest    string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDoc) model() model.User {
	return model.User{
		ID:        d.ID.Hex(),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Digest:    d.Digest,
		CreatedAt: d.CreatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	doc := userDoc{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Digest:    user.Digest,
		CreatedAt: user.CreatedAt,
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrDuplicateEmail
		}
		return "", err
	}
	id := res.InsertedID.(primitive.ObjectID).Hex()
	user.ID = id
	return id, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.User{}, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, err
	}
	return doc.model(), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, err
	}
	return doc.model(), nil
}

func (s *Store) ListUsersByIDs(ctx context.Context, ids []string) ([]model.LikeUser, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []model.LikeUser{}, nil
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"firstname": 1, "lastname": 1})
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	likeUsers := []model.LikeUser{}
	for cursor.Next(ctx) {
		var doc struct {
			ID        primitive.ObjectID `bson:"_id"`
			FirstName string             `bson:"firstname"`
			LastName  string             `bson:"lastname"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		likeUsers = append(likeUsers, model.LikeUser{
			ID:        doc.ID.Hex(),
			FirstName: doc.FirstName,
			LastName:  doc.LastName,
		})
	}
	return likeUsers, cursor.Err()
}

type postDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"userId"`
	PosterName string             `bson:"posterName"`
	Content    string             `bson:"content"`
	Image      string             `bson:"image,omitempty"`
	Privacy    string             `bson:"privacy,omitempty"`
	Likes      []string           `bson:"likes"`
	SharedFrom string             `bson:"sharedFrom,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d postDoc) model() model.Post {
	likes := d.Likes
	if likes == nil {
		likes = []string{}
	}
	return model.Post{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		PosterName: d.PosterName,
		Content:    d.Content,
		Image:      d.Image,
		Privacy:    d.Privacy,
		Likes:      likes,
		SharedFrom: d.SharedFrom,
		CreatedAt:  d.CreatedAt,
	}
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	likes := post.Likes
	if likes == nil {
		likes = []string{}
	}
	doc := postDoc{
		UserID:     post.UserID,
		PosterName: post.PosterName,
		Content:    post.Content,
		Image:      post.Image,
		Privacy:    post.Privacy,
		Likes:      likes,
		SharedFrom: post.SharedFrom,
		CreatedAt:  post.CreatedAt,
	}
	res, err := s.posts.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	id := res.InsertedID.(primitive.ObjectID).Hex()
	post.ID = id
	post.Likes = likes
	return id, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (model.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Post{}, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.getPost(ctx, oid)
}

func (s *Store) getPost(ctx context.Context, oid primitive.ObjectID) (model.Post, error) {
	var doc postDoc
	if err := s.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Post{}, store.ErrNotFound
		}
		return model.Post{}, err
	}
	return doc.model(), nil
}

func (s *Store) ListPosts(ctx context.Context) ([]model.Post, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.posts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []model.Post{}
	for cursor.Next(ctx) {
		var doc postDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		posts = append(posts, doc.model())
	}
	return posts, cursor.Err()
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// TogglePostLike flips userID in the post's like-set. The mutation itself is
// a single atomic $addToSet or $pull, so concurrent toggles by different
// users cannot lose each other's entries, and $addToSet keeps the set free
// of duplicates.
func (s *Store) TogglePostLike(ctx context.Context, id, userID string) (model.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return model.Post{}, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	post, err := s.getPost(ctx, oid)
	if err != nil {
		return model.Post{}, err
	}

	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	if contains(post.Likes, userID) {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	}
	if _, err := s.posts.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return model.Post{}, err
	}
	return s.getPost(ctx, oid)
}

type commentDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	PostID          string             `bson:"postId"`
	UserID          string             `bson:"userId"`
	UserName        string             `bson:"userName"`
	Content         string             `bson:"content"`
	ParentCommentID string             `bson:"parentCommentId,omitempty"`
	Likes           []string           `bson:"likes"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

func (d commentDoc) model() model.Comment {
	likes := d.Likes
	if likes == nil {
		likes = []string{}
	}
	return model.Comment{
		ID:              d.ID.Hex(),
		PostID:          d.PostID,
		UserID:          d.UserID,
		UserName:        d.UserName,
		Content:         d.Content,
		ParentCommentID: d.ParentCommentID,
		Likes:           likes,
		CreatedAt:       d.CreatedAt,
	}
}

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	likes := comment.Likes
	if likes == nil {
		likes = []string{}
	}
	doc := commentDoc{
		PostID:          comment.PostID,
		UserID:          comment.UserID,
		UserName:        comment.UserName,
		Content:         comment.Content,
		ParentCommentID: comment.ParentCommentID,
		Likes:           likes,
		CreatedAt:       comment.CreatedAt,
	}
	res, err := s.comments.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	id := res.InsertedID.(primitive.ObjectID).Hex()
	comment.ID = id
	comment.Likes = likes
	return id, nil
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.comments.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := []model.Comment{}
	for cursor.Next(ctx) {
		var doc commentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		comments = append(comments, doc.model())
	}
	return comments, cursor.Err()
}

func (s *Store) ToggleCommentLike(ctx context.Context, id, userID string) ([]string, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var doc commentDoc
	if err := s.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	if contains(doc.Likes, userID) {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	}
	if _, err := s.comments.UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return nil, err
	}

	if err := s.comments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, err
	}
	if doc.Likes == nil {
		return []string{}, nil
	}
	return doc.Likes, nil
}

type storyDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	UserName  string             `bson:"userName"`
	Content   string             `bson:"content"`
	Image     string             `bson:"image,omitempty"`
	Privacy   string             `bson:"privacy,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d storyDoc) model() model.Story {
	return model.Story{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		UserName:  d.UserName,
		Content:   d.Content,
		Image:     d.Image,
		Privacy:   d.Privacy,
		CreatedAt: d.CreatedAt,
	}
}

func (s *Store) CreateStory(ctx context.Context, story *model.Story) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	doc := storyDoc{
		UserID:    story.UserID,
		UserName:  story.UserName,
		Content:   story.Content,
		Image:     story.Image,
		Privacy:   story.Privacy,
		CreatedAt: story.CreatedAt,
	}
	res, err := s.stories.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	id := res.InsertedID.(primitive.ObjectID).Hex()
	story.ID = id
	return id, nil
}

func (s *Store) ListStories(ctx context.Context) ([]model.Story, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.stories.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stories := []model.Story{}
	for cursor.Next(ctx) {
		var doc storyDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		stories = append(stories, doc.model())
	}
	return stories, cursor.Err()
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
