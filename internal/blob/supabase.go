package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseConfig holds the storage API settings.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
	Timeout    time.Duration
}

// Supabase uploads objects to a Supabase Storage bucket.
type Supabase struct {
	config SupabaseConfig
	client *http.Client
}

func NewSupabase(config SupabaseConfig) *Supabase {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	config.URL = strings.TrimRight(config.URL, "/")
	return &Supabase{config: config, client: &http.Client{Timeout: timeout}}
}

func (s *Supabase) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	endpoint := s.config.URL + "/storage/v1/object/" + url.PathEscape(s.config.Bucket) + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.config.ServiceKey)
	req.Header.Set("apikey", s.config.ServiceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return "", ErrExists
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if strings.Contains(string(msg), "Duplicate") || strings.Contains(string(msg), "already exists") {
			return "", ErrExists
		}
		return "", fmt.Errorf("upload %s: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return s.PublicURL(name), nil
}

// PublicURL is the retrieval address of name in a public bucket.
func (s *Supabase) PublicURL(name string) string {
	return s.config.URL + "/storage/v1/object/public/" + url.PathEscape(s.config.Bucket) + "/" + url.PathEscape(name)
}
