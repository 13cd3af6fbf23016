package portal

import (
	"context"
	"strings"

	"maestro/internal/services"
)

// Content types accepted by the approval endpoints.
const (
	ContentConcept       = "concept"
	ContentStructure     = "structure"
	ContentEmailSequence = "email_sequence"
)

// ValidContentType reports whether the approval endpoints accept t.
func ValidContentType(t string) bool {
	switch t {
	case ContentConcept, ContentStructure, ContentEmailSequence:
		return true
	}
	return false
}

type submitApprovalRequest struct {
	AssetID     string `json:"asset_id"`
	ContentType string `json:"content_type"`
}

// SubmitForApproval places one content type of an asset into the admin
// review queue.
func (c *Client) SubmitForApproval(ctx context.Context, assetID, contentType string) (*Ack, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "submit-approval", "asset id required", nil)
	}
	if !ValidContentType(contentType) {
		return nil, services.Wrap(services.ErrValidation, "portal", "submit-approval", "unknown content type "+contentType, nil)
	}
	var ack Ack
	if err := c.postJSON(ctx, "submit-approval", "/approvals/submit", submitApprovalRequest{AssetID: assetID, ContentType: contentType}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// ApprovalStatus asks whether one content type may proceed to the next
// phase.
func (c *Client) ApprovalStatus(ctx context.Context, assetID, contentType string) (*ApprovalDecision, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "approval-status", "asset id required", nil)
	}
	if !ValidContentType(contentType) {
		return nil, services.Wrap(services.ErrValidation, "portal", "approval-status", "unknown content type "+contentType, nil)
	}
	var decision ApprovalDecision
	if err := c.getJSON(ctx, "approval-status", "/approvals/status/"+assetID+"/"+contentType, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

// ApprovalHistory lists past review rounds for an asset, optionally
// filtered to one content type.
func (c *Client) ApprovalHistory(ctx context.Context, assetID, contentType string) ([]ApprovalRecord, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "approval-history", "asset id required", nil)
	}
	path := "/approvals/history/" + assetID
	if contentType != "" {
		if !ValidContentType(contentType) {
			return nil, services.Wrap(services.ErrValidation, "portal", "approval-history", "unknown content type "+contentType, nil)
		}
		path += "?content_type=" + contentType
	}
	var payload struct {
		Status  string           `json:"status"`
		History []ApprovalRecord `json:"history"`
	}
	if err := c.getJSON(ctx, "approval-history", path, &payload); err != nil {
		return nil, err
	}
	return payload.History, nil
}
