package forum

import (
	"errors"
	"html"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ummahhub/community-api/internal/domain"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

// cleanPasses bounds how many layers of entity encoding clean will peel.
const cleanPasses = 8

// timestampPrecision matches the coarsest store (BSON dates keep milliseconds).
const timestampPrecision = time.Millisecond

// ReplyInput is the unvalidated shape of a reply.
type ReplyInput struct {
	ID           string    `json:"id"`
	AuthorName   string    `json:"authorName" validate:"required,max=100"`
	Reply        string    `json:"reply" validate:"required,max=10000"`
	Timestamp    time.Time `json:"timestamp"`
	IsAdminReply bool      `json:"isAdminReply"`
}

// ThreadInput is the unvalidated shape of a new thread.
type ThreadInput struct {
	AuthorName string `json:"authorName" validate:"required,max=100"`
	Question   string `json:"question" validate:"required,min=5,max=5000"`
}

type questionInput struct {
	Question string `json:"question" validate:"required,min=5,max=5000"`
}

// Codec validates and constructs forum entities before they reach the store.
type Codec struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	clock     *monotonicClock
	newID     func() string
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.clock = &monotonicClock{now: now}
	}
}

// WithIDGenerator overrides reply id generation.
func WithIDGenerator(gen func() string) CodecOption {
	return func(c *Codec) {
		c.newID = gen
	}
}

// NewCodec builds a Codec.
func NewCodec(opts ...CodecOption) *Codec {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	c := &Codec{
		validate:  v,
		sanitizer: bluemonday.StrictPolicy(),
		clock:     &monotonicClock{now: time.Now},
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidateReply checks a reply and fills in its id and timestamp when absent.
func (c *Codec) ValidateReply(in ReplyInput) (domain.ForumReply, error) {
	in.AuthorName = c.Clean(in.AuthorName)
	in.Reply = c.Clean(in.Reply)
	in.ID = strings.TrimSpace(in.ID)

	if err := c.check(&in, "invalid reply"); err != nil {
		return domain.ForumReply{}, err
	}

	reply := domain.ForumReply{
		ID:           in.ID,
		AuthorName:   in.AuthorName,
		Reply:        in.Reply,
		Timestamp:    in.Timestamp.UTC().Truncate(timestampPrecision),
		IsAdminReply: in.IsAdminReply,
	}
	if reply.ID == "" {
		reply.ID = c.newID()
	}
	if in.Timestamp.IsZero() {
		reply.Timestamp = c.clock.Now()
	}
	return reply, nil
}

// ValidateThread checks a new thread. ID and Timestamp are left for the store.
func (c *Codec) ValidateThread(in ThreadInput) (domain.ForumThread, error) {
	in.AuthorName = c.Clean(in.AuthorName)
	in.Question = c.Clean(in.Question)

	if err := c.check(&in, "invalid thread"); err != nil {
		return domain.ForumThread{}, err
	}

	return domain.ForumThread{
		AuthorName: in.AuthorName,
		Question:   in.Question,
		Replies:    []domain.ForumReply{},
		IsClosed:   false,
	}, nil
}

// ValidateQuestion checks an edited question.
func (c *Codec) ValidateQuestion(question string) (string, error) {
	in := questionInput{Question: c.Clean(question)}
	if err := c.check(&in, "invalid question"); err != nil {
		return "", err
	}
	return in.Question, nil
}

// Validate runs struct-tag validation on any payload and reports every failing field.
func (c *Codec) Validate(v any, message string) error {
	return c.check(v, message)
}

func (c *Codec) check(v any, message string) error {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(message, nil)
	}
	fields := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe)] = describe(fe)
	}
	return apperrors.NewValidationError(message, map[string]any{"fields": fields})
}

// Clean strips markup from s and returns trimmed plain text. Entity-encoded markup
// is decoded and stripped again until nothing changes, so "&lt;b&gt;" cannot come
// back as a tag.
func (c *Codec) Clean(s string) string {
	for i := 0; i < cleanPasses; i++ {
		sanitized := c.sanitizer.Sanitize(s)
		plain := html.UnescapeString(sanitized)
		if plain == s {
			return strings.TrimSpace(plain)
		}
		s = plain
	}
	// still decoding: keep the escaped form rather than risk live markup
	return strings.TrimSpace(c.sanitizer.Sanitize(s))
}

// IsReservedAuthor reports whether name, once cleaned, is the moderator name.
func (c *Codec) IsReservedAuthor(name string) bool {
	return strings.EqualFold(c.Clean(name), domain.OfficialAuthorName)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " long"
	case "max":
		return "must be at most " + fe.Param() + " long"
	case "gte", "lte":
		return "is out of range"
	default:
		return "is invalid"
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// monotonicClock never returns a time earlier than one it already handed out.
type monotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func (c *monotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(timestampPrecision)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
