package portal

import (
	"context"
	"strings"

	"maestro/internal/services"
)

// Profile fetches the mentor profile for an auth user id. A missing
// profile surfaces as services.ErrNotFound; first-run callers create
// one via UpdateProfile.
func (c *Client) Profile(ctx context.Context, userID string) (*Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "profile", "user id required", nil)
	}
	var profile Profile
	if err := c.getJSON(ctx, "profile", "/mentors/user/"+userID, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile applies a partial edit to the mentor profile, creating
// the profile when none exists yet, and returns the updated record.
func (c *Client) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "update-profile", "user id required", nil)
	}
	var profile Profile
	if err := c.patchJSON(ctx, "update-profile", "/mentors/user/"+userID, update, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// AdvanceStage moves the mentor's workflow stage via a profile patch.
func (c *Client) AdvanceStage(ctx context.Context, userID, stage string) (*Profile, error) {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "advance-stage", "stage required", nil)
	}
	return c.UpdateProfile(ctx, userID, ProfileUpdate{CurrentStage: &stage})
}
