// internal/users/users.go
package users

import (
	"context"

	json "github.com/goccy/go-json"

	"orderrelay/internal/upstream"
)

// User is a known end-user as recorded by the backend.
type User struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// Service forwards the user-directory actions. The backend owns the
// directory; the relay neither caches nor deduplicates it.
type Service struct {
	client *upstream.Client
}

func NewService(client *upstream.Client) *Service {
	return &Service{client: client}
}

// Record upserts a user sighting.
func (s *Service) Record(ctx context.Context, userID, displayName string) error {
	raw, err := s.client.Get(ctx, "recordUser", userID, map[string]string{
		"displayName": displayName,
	})
	if err != nil {
		return err
	}
	return upstream.DecodeAck("recordUser", raw)
}

// List returns every recorded user.
func (s *Service) List(ctx context.Context) ([]User, error) {
	raw, err := s.client.Get(ctx, "getUsers", "", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		OK    bool   `json:"ok"`
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &upstream.FormatError{Action: "getUsers"}
	}
	if !resp.OK {
		return nil, &upstream.RejectedError{Action: "getUsers"}
	}
	if resp.Users == nil {
		resp.Users = []User{}
	}
	return resp.Users, nil
}
