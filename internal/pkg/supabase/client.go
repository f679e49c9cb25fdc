package supabase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// ErrInvalidToken is returned when the provider rejects a one-time token.
var ErrInvalidToken = errors.New("invalid or expired sign-in token")

// Identity is the provider account behind a verified sign-in.
type Identity struct {
	UserID string
	Email  string
}

// Authenticator is the passwordless sign-in flow used by the API.
type Authenticator interface {
	SendMagicLink(ctx context.Context, email string) error
	VerifyMagicLink(ctx context.Context, email, token string) (*Identity, error)
}

// Client implements Authenticator against the hosted GoTrue API.
type Client struct {
	auth   gotrue.Client
	logger *slog.Logger
}

// extractProjectRef extracts just the project reference ID from a Supabase URL
// From: akrqbuajqkirdekonpzy.supabase.co
// To: akrqbuajqkirdekonpzy
func extractProjectRef(url string) string {
	// Remove any protocol prefix
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "http://")

	// Split by the first dot to get just the project reference
	parts := strings.Split(url, ".")
	return parts[0]
}

// NewClient builds a client from the project URL and its public API key.
func NewClient(supabaseURL, supabaseKey string, logger *slog.Logger) (*Client, error) {
	if supabaseURL == "" || supabaseKey == "" {
		return nil, errors.New("SUPABASE_URL and SUPABASE_ANON_KEY must be set")
	}
	projectRef := extractProjectRef(supabaseURL)
	logger.Info("Initializing Supabase client", "project_ref", projectRef)

	return &Client{
		auth:   gotrue.New(projectRef, supabaseKey),
		logger: logger,
	}, nil
}

// Ping checks that the provider is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.auth.GetSettings(); err != nil {
		return fmt.Errorf("failed to connect to Supabase: %w", err)
	}
	return nil
}

func (c *Client) SendMagicLink(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.auth.Magiclink(types.MagiclinkRequest{Email: email}); err != nil {
		c.logger.Error("Magic link request failed", "error", err)
		return fmt.Errorf("send magic link: %w", err)
	}
	return nil
}

func (c *Client) VerifyMagicLink(ctx context.Context, email, token string) (*Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := c.auth.VerifyForUser(types.VerifyForUserRequest{
		Type:  types.VerificationTypeMagiclink,
		Token: token,
		Email: email,
	})
	if err != nil {
		c.logger.Warn("Magic link verification failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if res == nil || res.AccessToken == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UserID: res.User.ID.String(),
		Email:  strings.ToLower(res.User.Email),
	}, nil
}
