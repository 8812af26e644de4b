package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/persistence"
)

type threadDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	AuthorName string             `bson:"authorName"`
	Question   string             `bson:"question"`
	Replies    []replyDocument    `bson:"replies"`
	Timestamp  time.Time          `bson:"timestamp"`
	IsClosed   bool               `bson:"isClosed"`
}

type replyDocument struct {
	ID           string    `bson:"id"`
	AuthorName   string    `bson:"authorName"`
	Reply        string    `bson:"reply"`
	Timestamp    time.Time `bson:"timestamp"`
	IsAdminReply bool      `bson:"isAdminReply"`
}

type forumMongoRepository struct {
	coll *mongo.Collection
}

// NewForumMongoRepository builds the document store backed repository.
func NewForumMongoRepository(db *mongo.Database) ForumRepository {
	return &forumMongoRepository{coll: db.Collection(persistence.ForumCollection)}
}

func (r *forumMongoRepository) CreateThread(ctx context.Context, thread *domain.ForumThread) error {
	doc := toThreadDocument(thread)
	doc.ID = primitive.NewObjectID()
	doc.Timestamp = storeNow()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	thread.ID = doc.ID.Hex()
	thread.Timestamp = doc.Timestamp
	if thread.Replies == nil {
		thread.Replies = []domain.ForumReply{}
	}
	return nil
}

func (r *forumMongoRepository) GetThread(ctx context.Context, id string) (*domain.ForumThread, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrThreadNotFound
	}
	var doc threadDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	return fromThreadDocument(doc), nil
}

func (r *forumMongoRepository) ListThreads(ctx context.Context, filter ThreadFilter) ([]domain.ForumThread, error) {
	filter = normalizeFilter(filter)

	query := bson.M{}
	if filter.Search != "" {
		query["question"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []threadDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	threads := make([]domain.ForumThread, 0, len(docs))
	for _, doc := range docs {
		threads = append(threads, *fromThreadDocument(doc))
	}
	return threads, nil
}

func (r *forumMongoRepository) AddReply(ctx context.Context, threadID string, reply domain.ForumReply) error {
	oid, err := primitive.ObjectIDFromHex(threadID)
	if err != nil {
		return ErrThreadNotFound
	}
	filter := bson.M{"_id": oid, "replies.id": bson.M{"$ne": reply.ID}}
	update := bson.M{"$addToSet": bson.M{"replies": toReplyDocument(reply)}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missing(ctx, oid, ErrDuplicateReply)
	}
	return nil
}

func (r *forumMongoRepository) PullReply(ctx context.Context, threadID, replyID string) error {
	oid, err := primitive.ObjectIDFromHex(threadID)
	if err != nil {
		return ErrThreadNotFound
	}
	filter := bson.M{"_id": oid, "replies.id": replyID}
	update := bson.M{"$pull": bson.M{"replies": bson.M{"id": replyID}}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missing(ctx, oid, ErrReplyNotFound)
	}
	return nil
}

func (r *forumMongoRepository) SetReply(ctx context.Context, threadID string, reply domain.ForumReply) error {
	oid, err := primitive.ObjectIDFromHex(threadID)
	if err != nil {
		return ErrThreadNotFound
	}
	filter := bson.M{"_id": oid, "replies.id": reply.ID}
	update := bson.M{"$set": bson.M{"replies.$": toReplyDocument(reply)}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missing(ctx, oid, ErrReplyNotFound)
	}
	return nil
}

func (r *forumMongoRepository) SetClosed(ctx context.Context, threadID string, closed bool) error {
	return r.setField(ctx, threadID, "isClosed", closed)
}

func (r *forumMongoRepository) SetQuestion(ctx context.Context, threadID, question string) error {
	return r.setField(ctx, threadID, "question", question)
}

func (r *forumMongoRepository) DeleteThread(ctx context.Context, threadID string) error {
	oid, err := primitive.ObjectIDFromHex(threadID)
	if err != nil {
		return ErrThreadNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrThreadNotFound
	}
	return nil
}

func (r *forumMongoRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *forumMongoRepository) setField(ctx context.Context, threadID, field string, value any) error {
	oid, err := primitive.ObjectIDFromHex(threadID)
	if err != nil {
		return ErrThreadNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrThreadNotFound
	}
	return nil
}

// missing tells apart an absent thread from a failed element condition.
func (r *forumMongoRepository) missing(ctx context.Context, oid primitive.ObjectID, otherwise error) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("check thread: %w", err)
	}
	if n == 0 {
		return ErrThreadNotFound
	}
	return otherwise
}

func toThreadDocument(thread *domain.ForumThread) threadDocument {
	replies := make([]replyDocument, 0, len(thread.Replies))
	for _, reply := range thread.Replies {
		replies = append(replies, toReplyDocument(reply))
	}
	return threadDocument{
		AuthorName: thread.AuthorName,
		Question:   thread.Question,
		Replies:    replies,
		IsClosed:   thread.IsClosed,
	}
}

func toReplyDocument(reply domain.ForumReply) replyDocument {
	return replyDocument{
		ID:           reply.ID,
		AuthorName:   reply.AuthorName,
		Reply:        reply.Reply,
		Timestamp:    reply.Timestamp,
		IsAdminReply: reply.IsAdminReply,
	}
}

func fromThreadDocument(doc threadDocument) *domain.ForumThread {
	replies := make([]domain.ForumReply, 0, len(doc.Replies))
	for _, r := range doc.Replies {
		replies = append(replies, domain.ForumReply{
			ID:           r.ID,
			AuthorName:   r.AuthorName,
			Reply:        r.Reply,
			Timestamp:    r.Timestamp.UTC(),
			IsAdminReply: r.IsAdminReply,
		})
	}
	return &domain.ForumThread{
		ID:         doc.ID.Hex(),
		AuthorName: doc.AuthorName,
		Question:   doc.Question,
		Replies:    replies,
		Timestamp:  doc.Timestamp.UTC(),
		IsClosed:   doc.IsClosed,
	}
}
