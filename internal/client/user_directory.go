package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// UserInfo is the profile subset the scheduling core needs: display name and
// default contact channels.
type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
}

func (u UserInfo) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserDirectory looks up patient and doctor profiles in the external user
// service. Referential validity of ids is asserted by callers through this
// lookup; the scheduling core itself performs no referential validation.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*UserInfo, error)
}

type httpUserDirectory struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPUserDirectory(baseURL string, timeout time.Duration) UserDirectory {
	return &httpUserDirectory{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type userEnvelope struct {
	Success bool     `json:"success"`
	Data    UserInfo `json:"data"`
}

func (c *httpUserDirectory) GetUser(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	url := fmt.Sprintf("%s/api/v1/users/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch user %s: unexpected status %d", id, resp.StatusCode)
	}

	var envelope userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	return &envelope.Data, nil
}
