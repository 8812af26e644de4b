package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/events"
	"github.com/ummahhub/community-api/internal/repository"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "authorName": {"type": "text"},
      "question":   {"type": "text"},
      "replies":    {"type": "text"},
      "isClosed":   {"type": "boolean"},
      "timestamp":  {"type": "date"}
    }
  }
}`

// ThreadReader loads the current state of a thread.
type ThreadReader interface {
	GetThread(ctx context.Context, id string) (*domain.ForumThread, error)
}

type threadDocument struct {
	AuthorName string    `json:"authorName"`
	Question   string    `json:"question"`
	Replies    []string  `json:"replies"`
	IsClosed   bool      `json:"isClosed"`
	Timestamp  time.Time `json:"timestamp"`
}

// Index keeps an Elasticsearch mirror of the forum and answers full text queries.
type Index struct {
	es      *elasticsearch.Client
	name    string
	threads ThreadReader
	logger  *zap.Logger
}

// NewIndex wraps an Elasticsearch client. A nil client yields a nil Index.
func NewIndex(es *elasticsearch.Client, name string, threads ThreadReader, logger *zap.Logger) *Index {
	if es == nil {
		return nil
	}
	return &Index{es: es, name: name, threads: threads, logger: logger}
}

// EnsureIndex creates the index with its mapping when missing.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := i.es.Indices.Exists([]string{i.name}, i.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = i.es.Indices.Create(i.name,
		i.es.Indices.Create.WithContext(ctx),
		i.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index: %s", res.String())
	}
	i.logger.Info("search index created", zap.String("index", i.name))
	return nil
}

// Register subscribes the index to every forum event.
func (i *Index) Register(dispatcher events.Dispatcher) {
	if i == nil || dispatcher == nil {
		return
	}
	events.SubscribeAll(dispatcher, i.Handle)
}

// Handle re-indexes the thread an event touched, or drops it once deleted.
func (i *Index) Handle(ctx context.Context, event events.Event) error {
	if event.Type == events.EventThreadDeleted {
		return i.Remove(ctx, event.ThreadID)
	}
	thread, err := i.threads.GetThread(ctx, event.ThreadID)
	if err != nil {
		if errors.Is(err, repository.ErrThreadNotFound) {
			return i.Remove(ctx, event.ThreadID)
		}
		return err
	}
	return i.Put(ctx, thread)
}

// Put indexes thread under its id.
func (i *Index) Put(ctx context.Context, thread *domain.ForumThread) error {
	doc := threadDocument{
		AuthorName: thread.AuthorName,
		Question:   thread.Question,
		Replies:    make([]string, 0, len(thread.Replies)),
		IsClosed:   thread.IsClosed,
		Timestamp:  thread.Timestamp,
	}
	for _, reply := range thread.Replies {
		doc.Replies = append(doc.Replies, reply.Reply)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := i.es.Index(i.name, bytes.NewReader(body),
		i.es.Index.WithContext(ctx),
		i.es.Index.WithDocumentID(thread.ID),
	)
	if err != nil {
		return fmt.Errorf("index thread %s: %w", thread.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index thread %s: %s", thread.ID, res.Status())
	}
	i.logger.Debug("thread indexed", zap.String("thread_id", thread.ID))
	return nil
}

// Remove deletes a thread document. A missing document is not an error.
func (i *Index) Remove(ctx context.Context, threadID string) error {
	res, err := i.es.Delete(i.name, threadID, i.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete thread %s: %w", threadID, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete thread %s: %s", threadID, res.Status())
	}
	return nil
}

// Search returns ids of threads matching query, best match first.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]string, error) {
	body, err := json.Marshal(map[string]any{
		"_source": false,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  query,
				"fields": []string{"question^3", "replies", "authorName"},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	res, err := i.es.Search(
		i.es.Search.WithContext(ctx),
		i.es.Search.WithIndex(i.name),
		i.es.Search.WithBody(bytes.NewReader(body)),
		i.es.Search.WithSize(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search: %s: %s", res.Status(), raw)
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
