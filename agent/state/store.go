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

var (
	ErrSnapshotNotFound = errors.New("session snapshot not found")
	ErrNilUserData      = errors.New("user data is nil")
	ErrInvalidSession   = errors.New("session id is empty")
)

const (
	defaultSnapshotKeyPrefix = "cartup:session:"
	defaultSnapshotTTL       = 24 * time.Hour
	maxResponseSizeBytes     = 2 << 20
)

// SnapshotStore persists UserData between process restarts so a caller who
// reconnects keeps their identifiers and language preference. It is optional:
// the runtime never touches it, only the entry point does.
type SnapshotStore interface {
	Load(ctx context.Context, sessionID string) (*UserData, error)
	Save(ctx context.Context, sessionID string, ud *UserData) error
	Delete(ctx context.Context, sessionID string) error
}

// SnapshotOption customizes UpstashSnapshotStore.
type SnapshotOption func(*UpstashSnapshotStore)

func WithKeyPrefix(prefix string) SnapshotOption {
	return func(s *UpstashSnapshotStore) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) SnapshotOption {
	return func(s *UpstashSnapshotStore) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) SnapshotOption {
	return func(s *UpstashSnapshotStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashSnapshotStore keeps UserData snapshots in Upstash Redis via REST.
type UpstashSnapshotStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func NewUpstashSnapshotStore(cfg UpstashConfig, opts ...SnapshotOption) (*UpstashSnapshotStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	store := &UpstashSnapshotStore{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		keyPrefix:  defaultSnapshotKeyPrefix,
		ttl:        defaultSnapshotTTL,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	if store.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}

	return store, nil
}

func (s *UpstashSnapshotStore) Load(ctx context.Context, sessionID string) (*UserData, error) {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := s.exec(ctx, []any{"GET", key})
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, ErrSnapshotNotFound
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}

	var ud UserData
	if err := json.Unmarshal([]byte(encoded), &ud); err != nil {
		return nil, fmt.Errorf("unmarshal user data: %w", err)
	}

	return &ud, nil
}

func (s *UpstashSnapshotStore) Save(ctx context.Context, sessionID string, ud *UserData) error {
	if ud == nil {
		return ErrNilUserData
	}
	key, err := s.redisKey(sessionID)
	if err != nil {
		return err
	}

	if ud.UpdatedAt.IsZero() {
		ud.UpdatedAt = time.Now().UTC()
	} else {
		ud.UpdatedAt = ud.UpdatedAt.UTC()
	}

	payload, err := json.Marshal(ud)
	if err != nil {
		return fmt.Errorf("marshal user data: %w", err)
	}

	cmd := []any{"SET", key, string(payload)}
	if s.ttl > 0 {
		cmd = append(cmd, "EX", ttlSeconds(s.ttl))
	}

	_, err = s.exec(ctx, cmd)
	return err
}

func (s *UpstashSnapshotStore) Delete(ctx context.Context, sessionID string) error {
	key, err := s.redisKey(sessionID)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, []any{"DEL", key})
	return err
}

func (s *UpstashSnapshotStore) redisKey(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return strings.TrimSpace(s.keyPrefix) + sessionID, nil
}

func (s *UpstashSnapshotStore) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if s == nil {
		return nil, errors.New("nil snapshot store")
	}
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if seconds <= 0 {
		return 1
	}
	if ttl%time.Second != 0 {
		seconds++
	}
	return int64(seconds)
}
