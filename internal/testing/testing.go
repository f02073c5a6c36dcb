// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// MockCatalog is an in-memory test double for the catalog client.
//
// Err, when set, is returned by every call. CreateErr only fails Create, after FailAfter successes.
type MockCatalog struct {
	mu        sync.Mutex
	Items     []models.Item
	Err       error
	CreateErr error
	FailAfter int
	created   int
	next      int
}

func (m *MockCatalog) List(ctx context.Context) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Item{}, m.Items...), nil
}

func (m *MockCatalog) Get(ctx context.Context, id string) (models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Item{}, m.Err
	}
	for _, item := range m.Items {
		if item.ID == id {
			return item, nil
		}
	}
	return models.Item{}, shared.ErrNotFound
}

func (m *MockCatalog) Create(ctx context.Context, item models.Item) (models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.Item{}, m.Err
	}
	if m.CreateErr != nil && m.created >= m.FailAfter {
		return models.Item{}, m.CreateErr
	}
	if item.ID != "" {
		return models.Item{}, shared.ErrAlreadyAssigned
	}
	m.created++
	m.next++
	item.ID = fmt.Sprintf("mock-%d", m.next)
	m.Items = append(m.Items, item)
	return item, nil
}

func (m *MockCatalog) Replace(ctx context.Context, id string, item models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	item.ID = id
	for i := range m.Items {
		if m.Items[i].ID == id {
			m.Items[i] = item
			return nil
		}
	}
	m.Items = append(m.Items, item)
	return nil
}

func (m *MockCatalog) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i := range m.Items {
		if m.Items[i].ID == id {
			m.Items = append(m.Items[:i], m.Items[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
