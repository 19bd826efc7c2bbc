package workflows

import (
	"context"
	"fmt"
	"strings"

	"github.com/PolarWolf314/tact/internal/audit"
	"github.com/PolarWolf314/tact/internal/bundle"
	kerrors "github.com/PolarWolf314/tact/internal/errors"
	"github.com/PolarWolf314/tact/internal/store"
)

// AddRecordOptions configures the add record workflow.
type AddRecordOptions struct {
	Title      string
	Content    string
	Emoji      string
	Importance string
	Tags       []string
}

// AddRecord stores a new record for the local profile.
func AddRecord(ctx context.Context, opts AddRecordOptions) (bundle.Record, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return bundle.Record{}, fmt.Errorf("title must not be empty")
	}

	importance := strings.ToLower(opts.Importance)
	switch importance {
	case "":
		importance = bundle.ImportanceMedium
	case bundle.ImportanceLow, bundle.ImportanceMedium, bundle.ImportanceHigh:
	default:
		return bundle.Record{}, fmt.Errorf("importance must be %s, %s or %s, got %q",
			bundle.ImportanceLow, bundle.ImportanceMedium, bundle.ImportanceHigh, opts.Importance)
	}

	var record bundle.Record
	err := withLocalUser(ctx, func(s *store.Store, owner bundle.User) error {
		r, err := s.AddRecord(ctx, owner.ID, bundle.Record{
			Title:      strings.TrimSpace(opts.Title),
			Content:    opts.Content,
			Emoji:      opts.Emoji,
			Importance: importance,
			Tags:       cleanTags(opts.Tags),
		})
		if err != nil {
			return err
		}
		record = r

		audit.Log(audit.Entry{User: owner.ID, Operation: audit.OpRecord, Detail: "add " + r.ID})
		return nil
	})
	return record, err
}

// ListRecordsOptions filters the list records workflow.
type ListRecordsOptions struct {
	// Search matches title or content, case-insensitively.
	Search string

	// Tag keeps only records carrying the tag.
	Tag string
}

// ListRecords returns the local profile's records, oldest first.
func ListRecords(ctx context.Context, opts ListRecordsOptions) ([]bundle.Record, error) {
	var records []bundle.Record
	err := withLocalUser(ctx, func(s *store.Store, owner bundle.User) error {
		var err error
		switch {
		case opts.Search != "":
			records, err = s.SearchRecords(ctx, owner.ID, opts.Search)
		case opts.Tag != "":
			records, err = s.RecordsByTag(ctx, owner.ID, strings.ToLower(opts.Tag))
		default:
			records, err = s.ListRecords(ctx, owner.ID)
		}
		if err != nil {
			return fmt.Errorf("listing records: %w", err)
		}

		if opts.Search != "" && opts.Tag != "" {
			records = withTag(records, opts.Tag)
		}
		return nil
	})
	return records, err
}

// DeleteRecord removes one of the local profile's records.
//
// Returns ErrRecordNotFound if no such record belongs to the local profile.
func DeleteRecord(ctx context.Context, id string) error {
	return withLocalUser(ctx, func(s *store.Store, owner bundle.User) error {
		r, err := s.GetRecord(ctx, id)
		if err != nil {
			return err
		}
		if r.OwnerID != owner.ID {
			return fmt.Errorf("%w: %s belongs to another profile", kerrors.ErrRecordNotFound, id)
		}
		if err := s.DeleteRecord(ctx, id); err != nil {
			return err
		}

		audit.Log(audit.Entry{User: owner.ID, Operation: audit.OpRecord, Detail: "delete " + id})
		return nil
	})
}

func cleanTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(strings.ToLower(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func withTag(records []bundle.Record, tag string) []bundle.Record {
	var out []bundle.Record
	for _, r := range records {
		for _, t := range r.Tags {
			if strings.EqualFold(t, tag) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
