package core

import (
	"context"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// Service answers every request whose first two path segments match Path.
// Returning a nil Response with a nil error means the service produced no
// response; the router answers those the same way as unregistered paths.
type Service interface {
	Path() string
	Handle(r *http.Request, subPath string) (*Response, error)
}

type ServiceFunc struct {
	Prefix  string
	Handler func(r *http.Request, subPath string) (*Response, error)
}

func (s ServiceFunc) Path() string {
	return s.Prefix
}

func (s ServiceFunc) Handle(r *http.Request, subPath string) (*Response, error) {
	if s.Handler == nil {
		return nil, nil
	}
	return s.Handler(r, subPath)
}

type Object struct {
	Key         string
	Body        []byte
	ContentType string
	UpdatedAt   time.Time
}

type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
}

type ListOptions struct {
	Prefix string
	Cursor string
	Limit  int
}

type ListPage struct {
	Objects   []ObjectInfo
	Cursor    string
	Truncated bool
}

// BlobStore is a flat key space of opaque bodies. Get reports
// ErrObjectNotFound for absent keys and Delete is idempotent. List returns
// keys in lexical order; Cursor is the last key of the page.
type BlobStore interface {
	Get(ctx context.Context, key string) (Object, error)
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, opts ListOptions) (ListPage, error)
}

type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type AccountStore interface {
	Create(ctx context.Context, account Account) (Account, error)
	GetByUsername(ctx context.Context, username string) (Account, error)
}

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
