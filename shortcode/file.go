package shortcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/viant/afs"
)

// FileStore persists short codes as a JSON document at an afs URL, so the
// mapping survives restarts and can live on any storage afs supports.
type FileStore struct {
	mu  sync.Mutex
	fs  afs.Service
	url string
}

type document struct {
	NextShortCode int               `json:"nextShortCode"`
	Anchors       map[string]string `json:"anchors"`
}

// NewFileStore creates a Store backed by the document at URL.
func NewFileStore(URL string) *FileStore {
	return &FileStore{fs: afs.New(), url: URL}
}

func (f *FileStore) NextShortCode(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load(ctx)
	if err != nil {
		return 0, err
	}
	code := doc.NextShortCode
	doc.NextShortCode++
	if err = f.save(ctx, doc); err != nil {
		return 0, err
	}
	return code, nil
}

func (f *FileStore) StoreUsingShortCode(ctx context.Context, code int, cloudAnchorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load(ctx)
	if err != nil {
		return err
	}
	doc.Anchors[strconv.Itoa(code)] = cloudAnchorID
	return f.save(ctx, doc)
}

func (f *FileStore) GetCloudAnchorID(ctx context.Context, code int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.load(ctx)
	if err != nil {
		return "", err
	}
	id := doc.Anchors[strconv.Itoa(code)]
	if id == "" {
		return "", ErrNotFound
	}
	return id, nil
}

// ---- persistence ----

func (f *FileStore) load(ctx context.Context) (*document, error) {
	doc := &document{NextShortCode: InitialShortCode, Anchors: map[string]string{}}
	exists, err := f.fs.Exists(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to check short code store %v: %w", f.url, err)
	}
	if !exists {
		return doc, nil
	}
	data, err := f.fs.DownloadWithURL(ctx, f.url)
	if err != nil {
		return nil, fmt.Errorf("failed to load short code store %v: %w", f.url, err)
	}
	if err = json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("invalid short code store %v: %w", f.url, err)
	}
	if doc.Anchors == nil {
		doc.Anchors = map[string]string{}
	}
	if doc.NextShortCode < InitialShortCode {
		doc.NextShortCode = InitialShortCode
	}
	return doc, nil
}

func (f *FileStore) save(ctx context.Context, doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err = f.fs.Upload(ctx, f.url, 0o644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save short code store %v: %w", f.url, err)
	}
	return nil
}
