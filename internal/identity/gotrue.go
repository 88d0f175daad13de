package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GoTrueConfig holds the Supabase auth settings.
type GoTrueConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string
	Timeout        time.Duration
}

// GoTrue talks to a Supabase auth (GoTrue) server.
type GoTrue struct {
	config GoTrueConfig
	client *http.Client
}

func NewGoTrue(config GoTrueConfig) *GoTrue {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	config.URL = strings.TrimRight(config.URL, "/")
	return &GoTrue{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

// VerifyToken checks the token locally when a JWT secret is configured and
// falls back to asking the auth server.
func (g *GoTrue) VerifyToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	if g.config.JWTSecret != "" {
		if user, err := parseHS256(token, []byte(g.config.JWTSecret)); err == nil {
			return user, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.config.URL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", g.config.AnonKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeProviderError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

type adminCreateUserBody struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// CreateUser registers an account through the admin API using the service role key.
func (g *GoTrue) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	payload, err := json.Marshal(adminCreateUserBody{
		Email:        params.Email,
		Password:     params.Password,
		EmailConfirm: params.EmailConfirm,
		UserMetadata: params.UserMetadata,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.URL+"/auth/v1/admin/users", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.config.ServiceRoleKey)
	req.Header.Set("apikey", g.config.ServiceRoleKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, decodeProviderError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// decodeProviderError extracts the message field GoTrue uses, which varies by version.
func decodeProviderError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Msg
	for _, candidate := range []string{payload.Message, payload.ErrorDescription, payload.Error} {
		if msg == "" {
			msg = candidate
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &ProviderError{StatusCode: resp.StatusCode, Message: msg}
}
