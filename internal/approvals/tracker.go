package approvals

import (
	"fmt"
	"strings"

	"maestro/internal/assetcache"
	"maestro/internal/services/portal"
)

// State is the derived approval state of one content item.
type State string

// Approval states.
const (
	StateDraft    State = "draft"
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
)

// Signals are the three source fields approval state derives from.
type Signals struct {
	ReadyToPublish bool
	Status         string
	SubmittedAt    string
	ApprovedAt     string
}

// Derive computes the approval state. Precedence is fixed: an explicit
// approval beats a rejection, a rejection beats a pending submission,
// and anything unsubmitted is a draft.
func Derive(s Signals) State {
	status := strings.ToLower(strings.TrimSpace(s.Status))
	switch {
	case s.ReadyToPublish || status == "approved":
		return StateApproved
	case status == "rejected":
		return StateRejected
	case s.SubmittedAt != "" && s.ApprovedAt == "":
		return StatePending
	default:
		return StateDraft
	}
}

// Kind names the content family an item belongs to.
type Kind string

// Content kinds.
const (
	KindConcept  Kind = "concept"
	KindSequence Kind = "sequence"
	KindMedia    Kind = "media"
)

// Item is one reviewable piece of content.
type Item struct {
	Kind       Kind
	Key        string
	Title      string
	Signals    Signals
	AdminNotes string
}

// State derives the item's current approval state.
func (i Item) State() State {
	return Derive(i.Signals)
}

// Submitted reports whether the item has ever been sent for review.
func (i Item) Submitted() bool {
	return i.Signals.SubmittedAt != ""
}

// Collect builds the reviewable items from an asset: the selected
// concept, one item per non-empty email sequence, and one per
// promotional image.
func Collect(asset *portal.Asset) []Item {
	if asset == nil {
		return nil
	}
	var items []Item

	if asset.SelectedConcept != nil {
		items = append(items, Item{
			Kind:  KindConcept,
			Key:   "concept",
			Title: asset.SelectedConcept.Title,
			Signals: Signals{
				ReadyToPublish: asset.ReadyToPublish,
				Status:         asset.ConceptApprovalStatus,
				SubmittedAt:    asset.SubmittedForApprovalAt,
				ApprovedAt:     asset.AdminApprovedAt,
			},
			AdminNotes: asset.ConceptAdminNotes,
		})
	}

	groups := assetcache.GroupEmails(asset.EmailPlan)
	for _, key := range assetcache.SequenceKeys() {
		emails := groups[key]
		if len(emails) == 0 {
			continue
		}
		items = append(items, Item{
			Kind:  KindSequence,
			Key:   string(key),
			Title: fmt.Sprintf("%s (%d emails)", strings.ReplaceAll(string(key), "_", " "), len(emails)),
			Signals: Signals{
				Status:      asset.EmailApprovalStatus,
				SubmittedAt: asset.SubmittedForApprovalAt,
				ApprovedAt:  asset.AdminApprovedAt,
			},
			AdminNotes: asset.EmailAdminNotes,
		})
	}

	for _, image := range asset.PromotionalImages {
		items = append(items, Item{
			Kind:    KindMedia,
			Key:     image.MediaType,
			Title:   image.Title,
			Signals: Signals{Status: image.Status},
		})
	}

	return items
}

// Change records a rejected item together with the admin's feedback.
type Change struct {
	Kind  Kind
	Key   string
	Notes string
}

// Summary is the rollup over all reviewable items.
type Summary struct {
	Total        int
	Counts       map[State]int
	AllApproved  bool
	NeedsChanges []Change
}

// Summarize reduces the items to counts, the all-approved flag, and
// the list of items an admin sent back with notes.
func Summarize(items []Item) Summary {
	summary := Summary{
		Total:  len(items),
		Counts: map[State]int{},
	}
	for _, item := range items {
		state := item.State()
		summary.Counts[state]++
		if state == StateRejected && item.AdminNotes != "" {
			summary.NeedsChanges = append(summary.NeedsChanges, Change{
				Kind:  item.Kind,
				Key:   item.Key,
				Notes: item.AdminNotes,
			})
		}
	}
	summary.AllApproved = len(items) > 0 && summary.Counts[StateApproved] == len(items)
	return summary
}
