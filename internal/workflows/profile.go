package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/tact/internal/audit"
	"github.com/PolarWolf314/tact/internal/bundle"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/store"
	"github.com/PolarWolf314/tact/internal/utils"
)

// ProfileResult describes the local profile.
type ProfileResult struct {
	User bundle.User

	// RecordsCount is the number of records the profile owns.
	RecordsCount int

	// Tags lists the distinct tags in use.
	Tags []string
}

// Profile returns the local profile, creating the default one on first use.
func Profile(ctx context.Context) (*ProfileResult, error) {
	var result *ProfileResult
	err := withLocalUser(ctx, func(s *store.Store, owner bundle.User) error {
		records, err := s.ListRecords(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("listing records: %w", err)
		}
		tags, err := s.Tags(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("listing tags: %w", err)
		}
		result = &ProfileResult{User: owner, RecordsCount: len(records), Tags: tags}
		return nil
	})
	return result, err
}

// UpdateProfileOptions configures the update profile workflow. Nil fields
// are left unchanged.
type UpdateProfileOptions struct {
	Name  *string
	Email *string
}

// UpdateProfile changes the local profile's name or email.
//
// Returns ErrInvalidEmail if the email is malformed.
func UpdateProfile(ctx context.Context, opts UpdateProfileOptions) (bundle.User, error) {
	var updated bundle.User
	err := withLocalUser(ctx, func(s *store.Store, owner bundle.User) error {
		var changed []string
		if opts.Name != nil {
			name := strings.TrimSpace(*opts.Name)
			if name == "" {
				return fmt.Errorf("name must not be empty")
			}
			owner.Name = name
			changed = append(changed, "name")
		}
		if opts.Email != nil {
			if !utils.IsValidEmail(*opts.Email) {
				return fmt.Errorf("%w: %s", kerrors.ErrInvalidEmail, *opts.Email)
			}
			owner.Email = strings.ToLower(*opts.Email)
			changed = append(changed, "email")
		}

		u, err := s.UpdateUser(ctx, owner)
		if err != nil {
			return err
		}
		updated = u

		if len(changed) > 0 {
			audit.Log(audit.Entry{
				User:      u.ID,
				Operation: audit.OpProfile,
				Detail:    strings.Join(changed, ","),
			})
		}
		return nil
	})
	return updated, err
}
