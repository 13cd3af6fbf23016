package assetcache

import (
	"fmt"

	"maestro/internal/services"
	"maestro/internal/services/portal"
)

// ConceptSource names which concept list a reference points into.
type ConceptSource string

// Concept list sources.
const (
	SourceImproved ConceptSource = "improved"
	SourceOriginal ConceptSource = "original"
)

// ConceptRef is a stable handle to one concept candidate. It carries
// the asset's concept generation at the time the list was shown, so a
// selection made after a regeneration is rejected instead of resolving
// to whatever now occupies the index.
type ConceptRef struct {
	AssetID    string        `json:"asset_id"`
	Source     ConceptSource `json:"source"`
	Index      int           `json:"index"`
	Generation int           `json:"generation"`
}

// ErrStaleConcept marks a reference whose generation no longer matches
// the asset.
var ErrStaleConcept = fmt.Errorf("concept list has changed since it was shown")

// NewConceptRef builds a reference into the asset's concept list.
func NewConceptRef(asset *portal.Asset, source ConceptSource, index int) (ConceptRef, error) {
	ref := ConceptRef{
		AssetID:    asset.ID,
		Source:     source,
		Index:      index,
		Generation: asset.ConceptVersion,
	}
	if _, err := ref.Resolve(asset); err != nil {
		return ConceptRef{}, err
	}
	return ref, nil
}

// Resolve returns the referenced concept after checking that the
// reference still matches the asset.
func (r ConceptRef) Resolve(asset *portal.Asset) (*portal.Concept, error) {
	if asset == nil || asset.ID != r.AssetID {
		return nil, services.Wrap(services.ErrValidation, "assetcache", "resolve-concept",
			"reference does not belong to this asset", nil)
	}
	if asset.ConceptVersion != r.Generation {
		return nil, services.Wrap(services.ErrValidation, "assetcache", "resolve-concept",
			fmt.Sprintf("generation %d does not match asset generation %d", r.Generation, asset.ConceptVersion),
			ErrStaleConcept)
	}

	var list []portal.Concept
	switch r.Source {
	case SourceImproved:
		list = asset.ConceptsImproved
	case SourceOriginal:
		list = asset.ConceptsOriginal
	default:
		return nil, services.Wrap(services.ErrValidation, "assetcache", "resolve-concept",
			fmt.Sprintf("unknown concept source %q", r.Source), nil)
	}
	if r.Index < 0 || r.Index >= len(list) {
		return nil, services.Wrap(services.ErrValidation, "assetcache", "resolve-concept",
			fmt.Sprintf("index %d out of range for %d %s concepts", r.Index, len(list), r.Source), nil)
	}
	return &list[r.Index], nil
}

// FromImproved reports whether the reference points into the improved
// list, matching the backend's from_improved selection flag.
func (r ConceptRef) FromImproved() bool {
	return r.Source == SourceImproved
}

// IsSelected reports whether the asset's stored selection matches the
// given concept. The backend stores a copy rather than an index, so
// identity is matched on title and big idea.
func IsSelected(asset *portal.Asset, concept *portal.Concept) bool {
	if asset == nil || asset.SelectedConcept == nil || concept == nil {
		return false
	}
	return asset.SelectedConcept.Title == concept.Title &&
		asset.SelectedConcept.BigIdea == concept.BigIdea
}
