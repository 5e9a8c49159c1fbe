package records

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/seatmap/pkg/errors"
	"github.com/matzehuels/seatmap/pkg/httputil"
	"github.com/matzehuels/seatmap/pkg/observability"
)

// Store loads the full record mapping.
type Store interface {
	Load(ctx context.Context) (Lookup, error)
	Close() error
}

// Writer is implemented by stores that records can be imported into.
type Writer interface {
	Put(ctx context.Context, recs Lookup) error
}

// Format is a record document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses a record document.
func Decode(data []byte, f Format) (Lookup, error) {
	out := Lookup{}
	var err error
	if f == FormatYAML {
		err = yaml.Unmarshal(data, &out)
	} else {
		err = json.Unmarshal(data, &out)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "decode %s records", f)
	}
	return out, nil
}

// FileStore reads records from a local JSON or YAML file.
type FileStore struct {
	Path string
}

func (s FileStore) Load(context.Context) (Lookup, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailure, err, "read records %s", s.Path)
	}
	return Decode(data, FormatFor(s.Path))
}

// Put writes recs to the file, replacing its contents.
func (s FileStore) Put(_ context.Context, recs Lookup) error {
	var (
		data []byte
		err  error
	)
	if FormatFor(s.Path) == FormatYAML {
		data, err = yaml.Marshal(recs)
	} else {
		data, err = json.MarshalIndent(recs, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o644)
}

func (FileStore) Close() error { return nil }

// URLStore fetches a record document over HTTP.
type URLStore struct {
	URL     string
	Fetcher *httputil.Fetcher
}

func (s URLStore) Load(ctx context.Context) (Lookup, error) {
	data, err := httputil.ReadSource(ctx, s.Fetcher, s.URL)
	if err != nil {
		return nil, err
	}
	return Decode(data, FormatFor(s.URL))
}

func (URLStore) Close() error { return nil }

// OpenOptions carries backend settings that cannot be expressed in the
// source string itself.
type OpenOptions struct {
	MongoDatabase   string
	MongoCollection string
	Fetcher         *httputil.Fetcher
}

// Open picks a store from source:
//
//	mongodb://host/...        MongoStore
//	sqlite:path, *.db, *.sqlite  SQLiteStore
//	http(s)://...             URLStore
//	anything else             FileStore
func Open(ctx context.Context, source string, opts OpenOptions) (Store, error) {
	switch {
	case strings.HasPrefix(source, "mongodb://"), strings.HasPrefix(source, "mongodb+srv://"):
		return NewMongoStore(ctx, MongoOptions{
			URI:        source,
			Database:   opts.MongoDatabase,
			Collection: opts.MongoCollection,
		})
	case strings.HasPrefix(source, "sqlite:"):
		return OpenSQLite(strings.TrimPrefix(source, "sqlite:"))
	case strings.HasSuffix(source, ".db"), strings.HasSuffix(source, ".sqlite"):
		return OpenSQLite(source)
	case errors.IsURL(source):
		return URLStore{URL: source, Fetcher: opts.Fetcher}, nil
	}
	if err := errors.ValidatePath(source); err != nil {
		return nil, err
	}
	return FileStore{Path: source}, nil
}

// LoadOrEmpty loads records from store, degrading every failure (including a
// nil store) to an empty mapping. The failure is logged, not returned.
func LoadOrEmpty(ctx context.Context, store Store, logger *log.Logger) Lookup {
	if store == nil {
		return Lookup{}
	}
	recs, err := store.Load(ctx)
	if err != nil {
		if logger == nil {
			logger = log.Default()
		}
		logger.Warn("section records unavailable, continuing without details", "err", errors.UserMessage(err))
		observability.Load().OnLoadFailed(ctx, "records", err)
		return Lookup{}
	}
	if recs == nil {
		recs = Lookup{}
	}
	return recs
}
