package kpi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qondlabs/qad-assistant/internal/common"
)

// Service runs the enrichment, synchronously for the visual chat path and
// via queued jobs for the polling path. A nil generator means no API key is
// configured; enrichment then returns the fixed configuration fallback.
type Service struct {
	repo *Repo
	gen  Generator
}

func NewService(repo *Repo, gen Generator) *Service {
	return &Service{repo: repo, gen: gen}
}

// Enrich produces a dashboard for one bot response. It never fails: missing
// configuration or generator errors degrade to fallback payloads.
func (s *Service) Enrich(ctx context.Context, botResponse string, tableData []map[string]any) *Dashboard {
	if s.gen == nil {
		return fallbackMissingKey()
	}
	return s.gen.Generate(ctx, botResponse, tableData)
}

// CreateJob queues an enrichment request. Re-sends carrying the same
// idempotency key return the original job without enqueueing again.
func (s *Service) CreateJob(ctx context.Context, sessionID, botResponse string, tableData []map[string]any, idempotencyKey *string) (*Job, bool, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, false, err
	}

	tableJSON, err := json.Marshal(tableData)
	if err != nil {
		return nil, false, fmt.Errorf("kpi: encode table data: %w", err)
	}

	job := &Job{
		ID:             id,
		SessionID:      sessionID,
		BotResponse:    botResponse,
		TableData:      string(tableJSON),
		IdempotencyKey: idempotencyKey,
		Status:         JobQueued,
	}
	return s.repo.CreateJobOrGetExisting(ctx, job)
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

// ProcessJob is the worker entry point: load the job, run the enrichment,
// store the dashboard JSON on the row.
func (s *Service) ProcessJob(ctx context.Context, jobID string) error {
	_ = s.repo.UpdateJobStatusRunning(ctx, jobID)

	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	var tableData []map[string]any
	if job.TableData != "" {
		if err := json.Unmarshal([]byte(job.TableData), &tableData); err != nil {
			_ = s.repo.MarkJobFailed(ctx, jobID, "invalid table data: "+err.Error())
			return fmt.Errorf("kpi: decode table data for job %s: %w", jobID, err)
		}
	}

	dashboard := s.Enrich(ctx, job.BotResponse, tableData)

	result, err := json.Marshal(dashboard)
	if err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return fmt.Errorf("kpi: encode dashboard for job %s: %w", jobID, err)
	}

	return s.repo.MarkJobSucceeded(ctx, jobID, string(result))
}
