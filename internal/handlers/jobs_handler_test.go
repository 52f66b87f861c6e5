package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ternarybob/respondeo/internal/common"
	"github.com/ternarybob/respondeo/internal/models"
)

func trackedJobs() []*models.ProcessingJob {
	done := models.NewProcessingJob("https://example.com/done")
	done.Complete(4, 4)

	failed := models.NewProcessingJob("https://example.com/failed")
	failed.Fail(nil)

	pending := models.NewProcessingJob("https://example.com/pending")

	return []*models.ProcessingJob{pending, failed, done}
}

func TestJobsHandlerList(t *testing.T) {
	ingestion := &stubIngestion{jobs: trackedJobs()}
	h := NewJobsHandler(ingestion, nil, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Jobs  []*models.ProcessingJob `json:"jobs"`
		Count int                     `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 3 || len(resp.Jobs) != 3 {
		t.Errorf("expected 3 jobs, got count=%d len=%d", resp.Count, len(resp.Jobs))
	}
}

func TestJobsHandlerListFilters(t *testing.T) {
	ingestion := &stubIngestion{jobs: trackedJobs()}
	h := NewJobsHandler(ingestion, nil, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs?status=completed", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	var resp struct {
		Jobs []*models.ProcessingJob `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Jobs) != 1 || resp.Jobs[0].Status != models.JobStatusCompleted {
		t.Errorf("expected one completed job, got %v", resp.Jobs)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/jobs?limit=2", nil)
	rec = httptest.NewRecorder()
	h.HandleList(rec, req)

	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Errorf("expected limit of 2 jobs, got %d", len(resp.Jobs))
	}
}

func TestJobsHandlerListBadLimit(t *testing.T) {
	h := NewJobsHandler(&stubIngestion{}, nil, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs?limit=abc", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestJobsHandlerGet(t *testing.T) {
	jobs := trackedJobs()
	ingestion := &stubIngestion{jobs: jobs}
	h := NewJobsHandler(ingestion, nil, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+jobs[0].ID, nil)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var job models.ProcessingJob
	if err := json.Unmarshal(rec.Body.Bytes(), &job); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if job.ID != jobs[0].ID {
		t.Errorf("expected job %s, got %s", jobs[0].ID, job.ID)
	}
}

func TestJobsHandlerGetNotFound(t *testing.T) {
	h := NewJobsHandler(&stubIngestion{}, nil, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/does-not-exist", nil)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
