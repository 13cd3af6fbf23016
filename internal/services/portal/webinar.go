package portal

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"maestro/internal/services"
)

// UploadContextRequest carries the onboarding material that seeds a
// webinar asset. File is optional; when set, Filename names the part.
type UploadContextRequest struct {
	MentorID      string
	OnboardingDoc string
	HookAnalysis  string
	Filename      string
	File          io.Reader
}

// UploadContext submits onboarding material for processing. Current
// backends accept the upload asynchronously and return a job id; legacy
// ones process inline and return the asset id directly. UploadResult
// reports which path was taken.
func (c *Client) UploadContext(ctx context.Context, req UploadContextRequest) (*UploadResult, error) {
	if strings.TrimSpace(req.MentorID) == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "upload-context", "mentor id required", nil)
	}
	if strings.TrimSpace(req.OnboardingDoc) == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "upload-context", "onboarding document required", nil)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"mentor_id":      req.MentorID,
		"onboarding_doc": req.OnboardingDoc,
		"hook_analysis":  req.HookAnalysis,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, services.Wrap(services.ErrValidation, "portal", "upload-context", "encode form field "+name, err)
		}
	}
	if req.File != nil {
		filename := req.Filename
		if filename == "" {
			filename = "upload.bin"
		}
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "portal", "upload-context", "create file part", err)
		}
		if _, err := io.Copy(part, req.File); err != nil {
			return nil, services.Wrap(services.ErrTransport, "portal", "upload-context", "copy file contents", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "portal", "upload-context", "finalize multipart body", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/webinar/upload-context", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var payload struct {
		Status  string `json:"status"`
		JobID   string `json:"job_id"`
		AssetID string `json:"asset_id"`
		Message string `json:"message"`
	}
	if err := c.doJSON("upload-context", httpReq, &payload); err != nil {
		return nil, err
	}

	result := &UploadResult{JobID: payload.JobID, AssetID: payload.AssetID, Message: payload.Message}
	switch payload.Status {
	case "accepted":
		if payload.JobID == "" {
			return nil, services.Wrap(services.ErrValidation, "portal", "upload-context", "accepted upload missing job_id", nil)
		}
		result.Async = true
	case "success":
		if payload.AssetID == "" {
			return nil, services.Wrap(services.ErrValidation, "portal", "upload-context", "completed upload missing asset_id", nil)
		}
	default:
		return nil, services.Wrap(services.ErrValidation, "portal", "upload-context", "unexpected upload status "+payload.Status, nil)
	}
	return result, nil
}

// JobStatus fetches a background job snapshot.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*Job, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "job-status", "job id required", nil)
	}
	var job Job
	if err := c.getJSON(ctx, "job-status", "/webinar/jobs/"+jobID+"/status", &job); err != nil {
		return nil, err
	}
	if job.JobID == "" {
		job.JobID = jobID
	}
	if err := validateJob(&job); err != nil {
		return nil, services.Wrap(services.ErrValidation, "portal", "job-status", "invalid job payload", err)
	}
	return &job, nil
}

// Asset fetches the full webinar asset record.
func (c *Client) Asset(ctx context.Context, assetID string) (*Asset, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "get-asset", "asset id required", nil)
	}
	var envelope assetEnvelope
	if err := c.getJSON(ctx, "get-asset", "/webinar/assets/"+assetID, &envelope); err != nil {
		return nil, err
	}
	asset, err := envelope.normalized()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "portal", "get-asset", "invalid asset payload", err)
	}
	return asset, nil
}

type assetRequest struct {
	AssetID string `json:"asset_id"`
}

// GenerateConcepts starts concept generation for an asset. The concepts
// land on the asset record; callers refetch it after the ack.
func (c *Client) GenerateConcepts(ctx context.Context, assetID string) (*Ack, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "generate-concepts", "asset id required", nil)
	}
	var ack Ack
	if err := c.postJSON(ctx, "generate-concepts", "/webinar/concepts/generate", assetRequest{AssetID: assetID}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

type refineConceptRequest struct {
	AssetID   string `json:"asset_id"`
	ConceptID string `json:"concept_id"`
	Feedback  string `json:"feedback"`
}

// RefineConcept reworks one concept with mentor feedback. conceptID is
// the backend's composite concept handle for the asset.
func (c *Client) RefineConcept(ctx context.Context, assetID, conceptID, feedback string) (*Ack, error) {
	if strings.TrimSpace(assetID) == "" || strings.TrimSpace(conceptID) == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "refine-concept", "asset id and concept id required", nil)
	}
	if strings.TrimSpace(feedback) == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "refine-concept", "feedback required", nil)
	}
	var ack Ack
	if err := c.postJSON(ctx, "refine-concept", "/webinar/concepts/refine", refineConceptRequest{AssetID: assetID, ConceptID: conceptID, Feedback: feedback}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

type selectConceptRequest struct {
	ConceptIndex int  `json:"concept_index"`
	FromImproved bool `json:"from_improved"`
}

// SelectConcept marks one concept as the chosen direction and returns
// the backend's copy of the selection.
func (c *Client) SelectConcept(ctx context.Context, assetID string, conceptIndex int, fromImproved bool) (*Concept, error) {
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "select-concept", "asset id required", nil)
	}
	if conceptIndex < 0 {
		return nil, services.Wrap(services.ErrValidation, "portal", "select-concept", "concept index must not be negative", nil)
	}
	var payload struct {
		Status          string   `json:"status"`
		SelectedConcept *Concept `json:"selected_concept"`
	}
	path := "/webinar/assets/" + assetID + "/select-concept"
	if err := c.postJSON(ctx, "select-concept", path, selectConceptRequest{ConceptIndex: conceptIndex, FromImproved: fromImproved}, &payload); err != nil {
		return nil, err
	}
	if payload.SelectedConcept == nil {
		return nil, services.Wrap(services.ErrValidation, "portal", "select-concept", "response missing selected_concept", nil)
	}
	return payload.SelectedConcept, nil
}

type structureRequest struct {
	AssetID     string `json:"asset_id"`
	ConceptText string `json:"concept_text"`
}

// GenerateStructure builds the slide-by-slide outline from the selected
// concept and returns the raw structure text.
func (c *Client) GenerateStructure(ctx context.Context, assetID, conceptText string) (string, error) {
	if strings.TrimSpace(assetID) == "" {
		return "", services.Wrap(services.ErrValidation, "portal", "generate-structure", "asset id required", nil)
	}
	if strings.TrimSpace(conceptText) == "" {
		return "", services.Wrap(services.ErrValidation, "portal", "generate-structure", "concept text required", nil)
	}
	var payload struct {
		Status    string `json:"status"`
		Structure string `json:"structure"`
	}
	if err := c.postJSON(ctx, "generate-structure", "/webinar/structure/generate", structureRequest{AssetID: assetID, ConceptText: conceptText}, &payload); err != nil {
		return "", err
	}
	if payload.Structure == "" {
		return "", services.Wrap(services.ErrValidation, "portal", "generate-structure", "response missing structure", nil)
	}
	return payload.Structure, nil
}

type emailPlanRequest struct {
	AssetID        string `json:"asset_id"`
	StructureText  string `json:"structure_text"`
	ProductDetails string `json:"product_details"`
}

// GenerateEmails builds the full launch email plan for an asset.
func (c *Client) GenerateEmails(ctx context.Context, assetID, structureText, productDetails string) (*EmailPlan, error) {
	if strings.TrimSpace(assetID) == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "generate-emails", "asset id required", nil)
	}
	var payload struct {
		Status    string     `json:"status"`
		EmailPlan *EmailPlan `json:"email_plan"`
	}
	req := emailPlanRequest{AssetID: assetID, StructureText: structureText, ProductDetails: productDetails}
	if err := c.postJSON(ctx, "generate-emails", "/webinar/emails/generate", req, &payload); err != nil {
		return nil, err
	}
	if payload.EmailPlan == nil {
		return nil, services.Wrap(services.ErrValidation, "portal", "generate-emails", "response missing email_plan", nil)
	}
	return payload.EmailPlan, nil
}

type singleEmailRequest struct {
	EmailOutline   string `json:"email_outline"`
	ConceptContext string `json:"concept_context"`
}

// GenerateSingleEmail rewrites one email from its outline and the
// concept context, returning the drafted body.
func (c *Client) GenerateSingleEmail(ctx context.Context, emailOutline, conceptContext string) (string, error) {
	if strings.TrimSpace(emailOutline) == "" {
		return "", services.Wrap(services.ErrValidation, "portal", "generate-single-email", "email outline required", nil)
	}
	var payload struct {
		Status string `json:"status"`
		Data   string `json:"data"`
	}
	if err := c.postJSON(ctx, "generate-single-email", "/webinar/emails/generate-single", singleEmailRequest{EmailOutline: emailOutline, ConceptContext: conceptContext}, &payload); err != nil {
		return "", err
	}
	if payload.Data == "" {
		return "", services.Wrap(services.ErrValidation, "portal", "generate-single-email", "response missing draft", nil)
	}
	return payload.Data, nil
}

type imageRequest struct {
	ConceptID   string `json:"concept_id"`
	MediaType   string `json:"media_type"`
	ConceptText string `json:"concept_text"`
}

// GenerateImage requests a promotional image of the given media type.
// The rendered image lands on the asset's promotional_images list.
func (c *Client) GenerateImage(ctx context.Context, conceptID, mediaType, conceptText string) (*Ack, error) {
	if strings.TrimSpace(conceptID) == "" || strings.TrimSpace(mediaType) == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "generate-image", "concept id and media type required", nil)
	}
	var ack Ack
	if err := c.postJSON(ctx, "generate-image", "/webinar/images/generate", imageRequest{ConceptID: conceptID, MediaType: mediaType, ConceptText: conceptText}, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

type marketingRequest struct {
	ConceptID string `json:"concept_id"`
	MediaType string `json:"media_type"`
}

// GenerateMarketing produces ad copy for the given media type.
func (c *Client) GenerateMarketing(ctx context.Context, conceptID, mediaType string) (string, error) {
	if strings.TrimSpace(conceptID) == "" || strings.TrimSpace(mediaType) == "" {
		return "", services.Wrap(services.ErrValidation, "portal", "generate-marketing", "concept id and media type required", nil)
	}
	var payload struct {
		Status string `json:"status"`
		Copy   string `json:"copy"`
		Data   string `json:"data"`
	}
	if err := c.postJSON(ctx, "generate-marketing", "/webinar/marketing/generate", marketingRequest{ConceptID: conceptID, MediaType: mediaType}, &payload); err != nil {
		return "", err
	}
	if payload.Copy != "" {
		return payload.Copy, nil
	}
	if payload.Data != "" {
		return payload.Data, nil
	}
	return "", services.Wrap(services.ErrValidation, "portal", "generate-marketing", "response missing copy", nil)
}

// VideoRequest configures an avatar video render. AssetID lets the
// backend pull the script from the stored structure when ScriptText is
// empty.
type VideoRequest struct {
	AssetID    string `json:"asset_id,omitempty"`
	ScriptText string `json:"script_text,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
	FastMode   *bool  `json:"fast_mode,omitempty"`
}

// GenerateVideo starts an avatar video render and returns the talk id
// used to poll for the finished clip.
func (c *Client) GenerateVideo(ctx context.Context, req VideoRequest) (string, error) {
	if strings.TrimSpace(req.AssetID) == "" && strings.TrimSpace(req.ScriptText) == "" {
		return "", services.Wrap(services.ErrValidation, "portal", "generate-video", "asset id or script text required", nil)
	}
	var payload struct {
		Status string `json:"status"`
		ID     string `json:"id"`
		TalkID string `json:"talk_id"`
	}
	if err := c.postJSON(ctx, "generate-video", "/webinar/video/generate", req, &payload); err != nil {
		return "", err
	}
	talkID := payload.TalkID
	if talkID == "" {
		talkID = payload.ID
	}
	if talkID == "" {
		return "", services.Wrap(services.ErrValidation, "portal", "generate-video", "response missing talk id", nil)
	}
	return talkID, nil
}

// VideoStatus polls an avatar video render.
func (c *Client) VideoStatus(ctx context.Context, talkID string) (*VideoJob, error) {
	talkID = strings.TrimSpace(talkID)
	if talkID == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "video-status", "talk id required", nil)
	}
	var job VideoJob
	if err := c.getJSON(ctx, "video-status", "/webinar/video/"+talkID, &job); err != nil {
		return nil, err
	}
	if job.TalkID == "" {
		job.TalkID = talkID
	}
	if job.Status == "" {
		return nil, services.Wrap(services.ErrValidation, "portal", "video-status", "video payload missing status", nil)
	}
	return &job, nil
}
