package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPServiceOptions configures the Bot-API-style HTTP transport.
type HTTPServiceOptions struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	UserAgent  string
}

// HTTPService resolves entities over the platform's HTTP API. It is
// the only place that inspects raw platform responses; every failure
// leaves this package as a *PlatformError.
type HTTPService struct {
	baseURL    string
	token      string
	httpClient *http.Client
	userAgent  string
}

// NewHTTPService creates the HTTP transport adapter.
func NewHTTPService(opts HTTPServiceOptions) *HTTPService {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPService{
		baseURL:    baseURL,
		token:      strings.TrimSpace(opts.Token),
		httpClient: httpClient,
		userAgent:  strings.TrimSpace(opts.UserAgent),
	}
}

func (s *HTTPService) ResolveByID(ctx context.Context, id int64) (*Resolution, error) {
	return s.getChat(ctx, fmt.Sprintf("%d", id))
}

func (s *HTTPService) ResolveByUsername(ctx context.Context, handle string) (*Resolution, error) {
	return s.getChat(ctx, "@"+strings.TrimPrefix(handle, "@"))
}

func (s *HTTPService) ResolveByInvite(ctx context.Context, hash string) (*Resolution, error) {
	return s.getChat(ctx, "https://t.me/+"+hash)
}

// apiEnvelope is the platform's response wrapper.
type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// apiChat is the subset of the chat object the engine consumes.
type apiChat struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Deleted  bool   `json:"is_deleted"`

	Restricted        bool `json:"is_restricted"`
	RestrictionReason []struct {
		Platform string `json:"platform"`
		Reason   string `json:"reason"`
		Text     string `json:"text"`
	} `json:"restriction_reason"`
}

func (s *HTTPService) getChat(ctx context.Context, chatID string) (*Resolution, error) {
	if s.token == "" {
		return nil, &PlatformError{Kind: KindAuth, Raw: "no session token configured"}
	}

	u := fmt.Sprintf("%s/bot%s/getChat?chat_id=%s", s.baseURL, s.token, url.QueryEscape(chatID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &PlatformError{Kind: KindOther, Raw: err.Error()}
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &PlatformError{Kind: KindConnectivity, Raw: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &PlatformError{Kind: KindConnectivity, Raw: err.Error()}
	}

	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &PlatformError{Kind: KindOther, Raw: fmt.Sprintf("bad response (%d): %s", resp.StatusCode, err)}
	}

	if !env.OK {
		return nil, classifyAPIError(resp.StatusCode, &env)
	}

	var chat apiChat
	if err := json.Unmarshal(env.Result, &chat); err != nil {
		return nil, &PlatformError{Kind: KindOther, Raw: "bad chat payload: " + err.Error()}
	}

	res := &Resolution{
		NumericID: chat.ID,
		Username:  chat.Username,
		Deleted:   chat.Deleted,
	}
	if chat.Restricted {
		res.Restricted = true
		for _, r := range chat.RestrictionReason {
			// Keep the platform-wide restriction when present; the
			// analyzer treats anything narrower as inconclusive.
			res.RestrictionPlatform = r.Platform
			res.RestrictionReason = r.Reason
			res.RestrictionText = r.Text
			if r.Platform == "all" {
				break
			}
		}
	}
	return res, nil
}

// classifyAPIError is the single place raw API error responses are
// matched. It returns a *PlatformError from the closed kind set.
func classifyAPIError(httpStatus int, env *apiEnvelope) *PlatformError {
	raw := fmt.Sprintf("%d: %s", env.ErrorCode, env.Description)
	desc := strings.ToLower(env.Description)

	switch {
	case env.ErrorCode == http.StatusTooManyRequests || httpStatus == http.StatusTooManyRequests:
		wait := time.Minute
		if env.Parameters != nil && env.Parameters.RetryAfter > 0 {
			wait = time.Duration(env.Parameters.RetryAfter) * time.Second
		}
		return &PlatformError{Kind: KindFloodWait, Wait: wait, Raw: raw}

	case env.ErrorCode == http.StatusUnauthorized || env.ErrorCode == http.StatusForbidden:
		return &PlatformError{Kind: KindAuth, Raw: raw}

	case strings.Contains(desc, "deactivated"):
		return &PlatformError{Kind: KindTombstoned, Raw: raw}

	case strings.Contains(desc, "not found"),
		strings.Contains(desc, "username_invalid"),
		strings.Contains(desc, "username_not_occupied"),
		strings.Contains(desc, "invite_hash_expired"),
		strings.Contains(desc, "invite_hash_invalid"),
		strings.Contains(desc, "invalid"):
		return &PlatformError{Kind: KindNotFound, Raw: raw}

	default:
		return &PlatformError{Kind: KindOther, Raw: raw}
	}
}
