package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1707555600123)

	name := ObjectName("", "Receipt.JPG", now)
	assert.Regexp(t, regexp.MustCompile(`^1707555600123_[0-9a-f-]{36}\.jpg$`), name)

	name = ObjectName("req-42", "scan.final.pdf", now)
	assert.Regexp(t, regexp.MustCompile(`^req-42_[0-9a-f-]{36}\.pdf$`), name)

	name = ObjectName("", "noext", now)
	assert.Regexp(t, regexp.MustCompile(`^1707555600123_[0-9a-f-]{36}$`), name)

	assert.NotEqual(t, ObjectName("", "a.png", now), ObjectName("", "a.png", now))
}

func TestLocal_PutNeverOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	store, err := NewLocal(dir, "http://localhost:8080/receipts/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "a_1.png", "image/png", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/receipts/a_1.png", url)

	_, err = store.Put(ctx, "a_1.png", "image/png", strings.NewReader("second"))
	assert.ErrorIs(t, err, ErrExists)

	data, err := os.ReadFile(filepath.Join(dir, "a_1.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	_, err = store.Put(ctx, "../escape.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestSupabase_Put(t *testing.T) {
	var mu sync.Mutex
	stored := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		assert.Equal(t, "false", r.Header.Get("x-upsert"))
		name := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/receipts/")
		if _, ok := stored[name]; ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"statusCode":"409","error":"Duplicate","message":"The resource already exists"}`))
			return
		}
		body, _ := io.ReadAll(r.Body)
		stored[name] = string(body)
		_, _ = w.Write([]byte(`{"Key":"receipts/` + name + `"}`))
	}))
	defer srv.Close()

	store := NewSupabase(SupabaseConfig{URL: srv.URL, ServiceKey: "service", Bucket: "receipts"})
	ctx := context.Background()

	url, err := store.Put(ctx, "1707_abc.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/receipts/1707_abc.png", url)
	mu.Lock()
	assert.Equal(t, "png-bytes", stored["1707_abc.png"])
	mu.Unlock()

	_, err = store.Put(ctx, "1707_abc.png", "image/png", strings.NewReader("again"))
	assert.ErrorIs(t, err, ErrExists)
}

func TestSupabase_PutServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`bucket offline`))
	}))
	defer srv.Close()

	store := NewSupabase(SupabaseConfig{URL: srv.URL, ServiceKey: "service", Bucket: "receipts"})
	_, err := store.Put(context.Background(), "x.png", "", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket offline")
}
