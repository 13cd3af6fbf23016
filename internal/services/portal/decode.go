package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// decodeBody parses a JSON response body into out and rejects trailing
// garbage. Validation of required fields happens per endpoint.
func decodeBody(body io.Reader, out any) error {
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if decoder.More() {
		return errors.New("trailing data after json document")
	}
	return nil
}

// assetEnvelope tolerates both id spellings the backend has emitted.
type assetEnvelope struct {
	Asset
	MongoID string `json:"_id"`
}

func (e *assetEnvelope) normalized() (*Asset, error) {
	asset := e.Asset
	if asset.ID == "" {
		asset.ID = e.MongoID
	}
	if asset.ID == "" {
		return nil, errors.New("asset payload missing id")
	}
	return &asset, nil
}

// validateJob enforces the job status contract: an id, plus a known
// lifecycle state. Anything else is a malformed payload, not a zero job.
func validateJob(job *Job) error {
	if job.JobID == "" {
		return errors.New("job payload missing job_id")
	}
	switch job.Status {
	case JobPending, JobProcessing, JobCompleted, JobFailed:
	default:
		return fmt.Errorf("job %s has unknown status %q", job.JobID, job.Status)
	}
	if job.Progress < 0 {
		job.Progress = 0
	}
	if job.Progress > 100 {
		job.Progress = 100
	}
	return nil
}

// validateToken rejects login responses without a usable credential.
func validateToken(token *Token) error {
	if token.AccessToken == "" {
		return errors.New("token payload missing access_token")
	}
	if token.TokenType == "" {
		token.TokenType = "bearer"
	}
	return nil
}
