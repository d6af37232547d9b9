package ebay

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Production and sandbox OAuth endpoints.
const (
	authURL        = "https://api.ebay.com/identity/v1/oauth2/token"
	sandboxAuthURL = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"

	// Tokens are treated as expired this long before their advertised
	// lifetime runs out, so an in-flight request never rides a dying token.
	tokenExpiryBuffer = 5 * time.Minute
)

var defaultScopes = []string{
	"https://api.ebay.com/oauth/api_scope",
	"https://api.ebay.com/oauth/api_scope/buy.deal",
}

// TokenSource acquires and memoizes a client-credentials OAuth token. The
// token is shared process-wide and refreshed on demand once it is within the
// expiry buffer. The clock is injectable for tests.
type TokenSource struct {
	clientID     string
	clientSecret string
	authURL      string
	scopes       []string
	httpClient   *http.Client
	now          func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewTokenSource creates a token source for the given credentials. sandbox
// switches to the sandbox OAuth endpoint.
func NewTokenSource(clientID, clientSecret string, sandbox bool) *TokenSource {
	endpoint := authURL
	if sandbox {
		endpoint = sandboxAuthURL
	}
	return &TokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      endpoint,
		scopes:       defaultScopes,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
}

// Token returns a valid bearer token, fetching a fresh one when the cached
// token is absent or inside the expiry buffer.
func (ts *TokenSource) Token() (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Before(ts.expires) {
		return ts.token, nil
	}
	return ts.refreshLocked()
}

// Refresh discards the cached token and fetches a new one.
func (ts *TokenSource) Refresh() (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.refreshLocked()
}

func (ts *TokenSource) refreshLocked() (string, error) {
	if ts.clientID == "" || ts.clientSecret == "" {
		return "", fmt.Errorf("marketplace API credentials are not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", strings.Join(ts.scopes, " "))

	req, err := http.NewRequest("POST", ts.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(ts.clientID + ":" + ts.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access token")
	}

	ts.token = payload.AccessToken
	ts.expires = ts.now().Add(time.Duration(payload.ExpiresIn)*time.Second - tokenExpiryBuffer)
	return ts.token, nil
}
