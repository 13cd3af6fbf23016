package assetcache

import (
	"strings"

	"maestro/internal/services/portal"
)

// ConceptView is one concept candidate with its reference and selection
// state resolved.
type ConceptView struct {
	Ref      ConceptRef
	Concept  portal.Concept
	Selected bool
}

// Concepts lists the presentable concept candidates: the improved list
// when the backend produced one, the original candidates otherwise.
func Concepts(asset *portal.Asset) []ConceptView {
	if asset == nil {
		return nil
	}
	source := SourceImproved
	list := asset.ConceptsImproved
	if len(list) == 0 {
		source = SourceOriginal
		list = asset.ConceptsOriginal
	}
	views := make([]ConceptView, 0, len(list))
	for i, concept := range list {
		views = append(views, ConceptView{
			Ref: ConceptRef{
				AssetID:    asset.ID,
				Source:     source,
				Index:      i,
				Generation: asset.ConceptVersion,
			},
			Concept:  concept,
			Selected: IsSelected(asset, &list[i]),
		})
	}
	return views
}

// SequenceKey names one launch email group.
type SequenceKey string

// Launch email groups, in send order.
const (
	SequencePreWebinar  SequenceKey = "pre_webinar"
	SequencePostWebinar SequenceKey = "post_webinar"
	SequenceSales       SequenceKey = "sales"
	SequenceReplay      SequenceKey = "replay"
)

// SequenceKeys lists the groups in presentation order.
func SequenceKeys() []SequenceKey {
	return []SequenceKey{SequencePreWebinar, SequencePostWebinar, SequenceSales, SequenceReplay}
}

// SequenceEmail is one email with its position in the overall plan.
type SequenceEmail struct {
	Order int
	Email portal.EmailDraft
}

// GroupEmails splits a generated plan into the four launch sequences.
// Routing keys off the email's segment first, then its purpose; emails
// that match nothing land in the sales sequence.
func GroupEmails(plan *portal.EmailPlan) map[SequenceKey][]SequenceEmail {
	groups := map[SequenceKey][]SequenceEmail{
		SequencePreWebinar:  {},
		SequencePostWebinar: {},
		SequenceSales:       {},
		SequenceReplay:      {},
	}
	if plan == nil {
		return groups
	}
	for i, email := range plan.Emails {
		key := classifyEmail(email)
		groups[key] = append(groups[key], SequenceEmail{Order: i + 1, Email: email})
	}
	return groups
}

func classifyEmail(email portal.EmailDraft) SequenceKey {
	segment := strings.ToLower(email.Segment)
	purpose := strings.ToLower(email.Purpose)
	switch {
	case strings.Contains(segment, "pre_webinar") || strings.Contains(segment, "registered") || strings.Contains(purpose, "reminder"):
		return SequencePreWebinar
	case strings.Contains(segment, "post_webinar") || strings.Contains(segment, "attended") || strings.Contains(purpose, "thank"):
		return SequencePostWebinar
	case strings.Contains(segment, "replay") || strings.Contains(purpose, "replay"):
		return SequenceReplay
	default:
		return SequenceSales
	}
}

// MediaView summarizes the promotional media and video state.
type MediaView struct {
	Images      []portal.PromotionalImage
	VideoTalkID string
	VideoStatus string
	VideoURL    string
}

// Media projects the asset's marketing artifacts.
func Media(asset *portal.Asset) MediaView {
	if asset == nil {
		return MediaView{}
	}
	return MediaView{
		Images:      asset.PromotionalImages,
		VideoTalkID: asset.VideoTalkID,
		VideoStatus: asset.VideoStatus,
		VideoURL:    asset.VideoURL,
	}
}

// ImageByType returns the newest promotional image of a media type.
func ImageByType(asset *portal.Asset, mediaType string) (*portal.PromotionalImage, bool) {
	if asset == nil {
		return nil, false
	}
	for i := len(asset.PromotionalImages) - 1; i >= 0; i-- {
		if asset.PromotionalImages[i].MediaType == mediaType {
			return &asset.PromotionalImages[i], true
		}
	}
	return nil, false
}

// StageEvidence projects an asset into the artifact summary the stage
// reconciler consumes.
type StageEvidence struct {
	HasAsset     bool
	HasConcepts  bool
	HasSelection bool
	HasStructure bool
	HasEmailPlan bool
	HasVideo     bool
}

// Evidence reports which production artifacts exist on the asset.
func Evidence(asset *portal.Asset) StageEvidence {
	if asset == nil {
		return StageEvidence{}
	}
	return StageEvidence{
		HasAsset:     true,
		HasConcepts:  len(asset.ConceptsImproved) > 0 || len(asset.ConceptsOriginal) > 0,
		HasSelection: asset.SelectedConcept != nil,
		HasStructure: asset.StructureContent != "" || len(asset.Structure) > 0,
		HasEmailPlan: asset.EmailPlan != nil && len(asset.EmailPlan.Emails) > 0,
		HasVideo:     asset.VideoURL != "" || asset.VideoTalkID != "",
	}
}
