package daemon

import (
	"context"
	"log/slog"
	"strings"

	"maestro/internal/jobs"
	"maestro/internal/logging"
	"maestro/internal/services/portal"
	"maestro/internal/session"
	"maestro/internal/stage"
)

// followJob attaches a watcher to the session's active job and keeps
// the local job history in step with what it observes.
func (d *Daemon) followJob(ctx context.Context, jobID, userID string) {
	logger := d.logger.With(logging.String(logging.FieldJobID, jobID))

	_, err := d.watchers.Watch(ctx, jobID, jobs.Hooks{
		OnProgress: func(update jobs.Update) {
			job := update.Job
			if err := d.store.UpdateJobStatus(ctx, jobID, string(job.Status), job.Progress, job.Message, ""); err != nil {
				logger.Warn("persist job progress", logging.Error(err))
			}
			if err := d.notifier.NotifyJobProgress(ctx, jobID, job.Progress, job.Message); err != nil {
				logger.Debug("progress notification failed", logging.Error(err))
			}
		},
		OnTerminal: func(job *portal.Job) {
			d.handleTerminal(ctx, job, userID)
		},
	})
	if err != nil {
		d.recordError(err)
		return
	}

	// First sighting of this job in the history: record it so job
	// listings work even for jobs started before the daemon came up.
	if _, err := d.store.Job(ctx, jobID); err != nil {
		record := session.JobRecord{JobID: jobID, Kind: "background", Status: string(portal.JobProcessing)}
		if err := d.store.RecordJob(ctx, record); err != nil {
			logger.Warn("record job", logging.Error(err))
		}
	}
	logger.Info("following job")
}

func (d *Daemon) handleTerminal(ctx context.Context, job *portal.Job, userID string) {
	logger := d.logger.With(logging.String(logging.FieldJobID, job.JobID))

	if err := d.store.UpdateJobStatus(ctx, job.JobID, string(job.Status), job.Progress, job.Message, job.Error); err != nil {
		logger.Warn("persist terminal job", logging.Error(err))
	}
	if err := d.store.SetCurrentJob(ctx, ""); err != nil {
		logger.Warn("clear job pointer", logging.Error(err))
	}

	if job.Status == portal.JobFailed {
		detail := job.Error
		if detail == "" {
			detail = job.Message
		}
		d.mu.Lock()
		d.lastError = detail
		d.mu.Unlock()
		if err := d.notifier.NotifyJobFailed(ctx, "background", job.JobID, detail); err != nil {
			logger.Debug("failure notification failed", logging.Error(err))
		}
		return
	}

	if err := d.notifier.NotifyJobCompleted(ctx, "background", job.JobID); err != nil {
		logger.Debug("completion notification failed", logging.Error(err))
	}
	if job.AssetID != "" {
		if err := d.store.SetCurrentAsset(ctx, job.AssetID); err != nil {
			logger.Warn("persist asset pointer", logging.Error(err))
		}
		d.cache.Invalidate(job.AssetID)
	}
	d.advanceAfterUpload(ctx, userID, logger)
}

// advanceAfterUpload moves an onboarding profile into concept
// generation once its upload job lands. Profiles past onboarding are
// left where they are.
func (d *Daemon) advanceAfterUpload(ctx context.Context, userID string, logger *slog.Logger) {
	if userID == "" {
		return
	}
	profile, err := d.portal.Profile(ctx, userID)
	if err != nil {
		logger.Warn("fetch profile after job", logging.Error(err))
		return
	}
	current := stage.Parse(profile.CurrentStage)
	if current != stage.Onboarding {
		return
	}
	next := current.Next()
	if _, err := d.portal.AdvanceStage(ctx, userID, string(next)); err != nil {
		logger.Warn("advance stage", logging.Error(err))
		return
	}
	logger.Info("stage advanced",
		logging.String("from", string(current)),
		logging.String("to", string(next)))
	if err := d.notifier.NotifyStageAdvanced(ctx, current, next); err != nil {
		logger.Warn("stage notification failed", logging.Error(err))
	}
}

// checkVideo polls an in-flight avatar render attached to the asset
// and announces the finished clip exactly once.
func (d *Daemon) checkVideo(ctx context.Context, assetID string) {
	asset, err := d.cache.Snapshot(ctx, assetID)
	if err != nil || asset == nil {
		return
	}
	talkID := asset.VideoTalkID
	if talkID == "" || videoDone(asset.VideoStatus) {
		return
	}

	d.mu.Lock()
	notified := d.videoNotified[talkID]
	d.mu.Unlock()
	if notified {
		return
	}

	video, err := d.portal.VideoStatus(ctx, talkID)
	if err != nil {
		return
	}
	if !videoDone(video.Status) {
		return
	}

	d.mu.Lock()
	d.videoNotified[talkID] = true
	d.mu.Unlock()

	d.cache.Invalidate(assetID)
	if err := d.notifier.NotifyVideoReady(ctx, video.ResultURL); err != nil {
		d.logger.Debug("video notification failed", logging.Error(err))
	}
}

func videoDone(status string) bool {
	switch strings.ToLower(status) {
	case "done", "completed", "ready":
		return true
	}
	return false
}
