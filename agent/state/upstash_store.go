package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxUpstashResponseBytes = 2 << 20

// ErrRedis wraps errors reported by the Upstash REST API itself.
var ErrRedis = errors.New("upstash redis error")

// UpstashConfig is read with the UPSTASH_REDIS prefix. Used when STATE_BACKEND=upstash.
type UpstashConfig struct {
	URL       string        `split_words:"true" required:"true"`
	Token     string        `split_words:"true" required:"true"`
	Timeout   time.Duration `split_words:"true" default:"10s"`
	KeyPrefix string        `split_words:"true" default:"spark:session:"`

	// TTL expires idle sessions. Zero keeps them forever.
	TTL time.Duration `default:"168h"`
}

type UpstashOption func(*UpstashStore)

// WithUpstashHTTPClient replaces the default client built from UpstashConfig.Timeout.
func WithUpstashHTTPClient(client *http.Client) UpstashOption {
	return func(s *UpstashStore) {
		if client != nil {
			s.client = client
		}
	}
}

// UpstashStore keeps each session as one JSON string value under keyPrefix+sessionID.
type UpstashStore struct {
	endpoint  string
	token     string
	keyPrefix string
	ttl       time.Duration
	client    *http.Client
}

func NewUpstashStore(cfg UpstashConfig, opts ...UpstashOption) (*UpstashStore, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if endpoint == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}
	if cfg.TTL < 0 {
		return nil, errors.New("ttl must be >= 0")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &UpstashStore{
		endpoint:  endpoint,
		token:     token,
		keyPrefix: strings.TrimSpace(cfg.KeyPrefix),
		ttl:       cfg.TTL,
		client:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *UpstashStore) Load(ctx context.Context, sessionID string) (*SessionState, error) {
	key, err := s.key(sessionID)
	if err != nil {
		return nil, err
	}

	result, err := s.command(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, ErrStateNotFound
	}

	// GET returns the stored value as a JSON string.
	var value string
	if err := json.Unmarshal(result, &value); err != nil {
		return nil, fmt.Errorf("decode session payload: %w", err)
	}
	return decodeSession([]byte(value))
}

func (s *UpstashStore) Save(ctx context.Context, st *SessionState) error {
	if err := prepareSave(st); err != nil {
		return err
	}
	key, err := s.key(st.SessionID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	args := []any{"SET", key, string(payload)}
	if s.ttl > 0 {
		args = append(args, "EX", expirySeconds(s.ttl))
	}
	_, err = s.command(ctx, args...)
	return err
}

func (s *UpstashStore) Delete(ctx context.Context, sessionID string) error {
	key, err := s.key(sessionID)
	if err != nil {
		return err
	}
	_, err = s.command(ctx, "DEL", key)
	return err
}

func (s *UpstashStore) key(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return s.keyPrefix + sessionID, nil
}

// command posts one Redis command as a JSON array and returns its "result" field.
func (s *UpstashStore) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("redis %v: %w", args[0], err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstashResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	var out struct {
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	if jsonErr := json.Unmarshal(raw, &out); jsonErr != nil && resp.StatusCode < http.StatusMultipleChoices {
		return nil, fmt.Errorf("decode redis response: %w", jsonErr)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRedis, out.Error)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: http status=%d", ErrRedis, resp.StatusCode)
	}
	return bytes.TrimSpace(out.Result), nil
}

// expirySeconds rounds ttl up to whole seconds, at least one.
func expirySeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	return max(secs, 1)
}
