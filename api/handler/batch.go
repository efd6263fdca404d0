package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/use-agent/folio/models"
	"github.com/use-agent/folio/webhook"
	"golang.org/x/sync/errgroup"
)

// batchRetention is how long finished jobs stay queryable.
const batchRetention = time.Hour

// batchJob tracks one batch. Results is indexed like the request URLs.
type batchJob struct {
	mu        sync.Mutex
	id        string
	status    string
	completed int
	failed    int
	results   []*models.ScrapeResponse
	createdAt time.Time
}

func (j *batchJob) record(i int, resp *models.ScrapeResponse) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results[i] = resp
	j.completed++
	if !resp.Success {
		j.failed++
	}
}

// finish sets the terminal status from the failure count.
func (j *batchJob) finish() {
	j.mu.Lock()
	defer j.mu.Unlock()
	switch {
	case j.failed == len(j.results):
		j.status = models.BatchFailed
	case j.failed > 0:
		j.status = models.BatchPartial
	default:
		j.status = models.BatchCompleted
	}
}

func (j *batchJob) view() models.BatchStatusResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	return models.BatchStatusResponse{
		ID:        j.id,
		Status:    j.status,
		Completed: j.completed,
		Total:     len(j.results),
		Results:   append([]*models.ScrapeResponse(nil), j.results...),
	}
}

// Batches holds in-flight and recently finished batch jobs.
type Batches struct {
	jobs sync.Map // id → *batchJob
	stop chan struct{}
	once sync.Once
}

// NewBatches starts the expiry loop for finished jobs.
func NewBatches() *Batches {
	b := &Batches{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-b.stop:
				return
			case <-ticker.C:
				b.expire(time.Now().Add(-batchRetention))
			}
		}
	}()
	return b
}

// Stop ends the expiry loop.
func (b *Batches) Stop() { b.once.Do(func() { close(b.stop) }) }

func (b *Batches) expire(cutoff time.Time) {
	b.jobs.Range(func(key, value any) bool {
		if value.(*batchJob).createdAt.Before(cutoff) {
			b.jobs.Delete(key)
		}
		return true
	})
}

// PostBatch returns a handler for POST /api/v1/portfolio/batch. It
// registers the job and scrapes in the background.
func PostBatch(d *Deps, b *Batches) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BatchRequest
		if !bindJSON(c, &req) {
			return
		}
		if limit := d.Config.Scraper.BatchMaxURLs; limit > 0 && len(req.URLs) > limit {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   invalidInput(fmt.Sprintf("maximum %d URLs per batch", limit)),
			})
			return
		}

		job := &batchJob{
			id:        "batch-" + uuid.NewString(),
			status:    models.BatchProcessing,
			results:   make([]*models.ScrapeResponse, len(req.URLs)),
			createdAt: time.Now(),
		}
		b.jobs.Store(job.id, job)

		go d.runBatch(job, req)

		c.JSON(http.StatusAccepted, models.BatchResponse{
			Success: true,
			ID:      job.id,
			Status:  models.BatchProcessing,
			Total:   len(req.URLs),
		})
	}
}

// GetBatch returns a handler for GET /api/v1/portfolio/batch/:id.
func GetBatch(b *Batches) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := b.jobs.Load(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   invalidInput("batch job not found"),
			})
			return
		}
		c.JSON(http.StatusOK, val.(*batchJob).view())
	}
}

// runBatch scrapes every URL with parallelism bounded by the tab pool and
// fires the webhook once all are done.
func (d *Deps) runBatch(job *batchJob, req models.BatchRequest) {
	limit := d.Scraper.Stats().MaxPages
	if limit <= 0 {
		limit = 4
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, target := range req.URLs {
		g.Go(func() error {
			resp, _ := d.scrapeOne(context.Background(), target, req.FetchMode, d.maxAge(0))
			job.record(i, resp)
			return nil
		})
	}
	_ = g.Wait()
	job.finish()

	view := job.view()
	slog.Info("batch job finished",
		"id", view.ID,
		"status", view.Status,
		"total", view.Total,
	)

	if req.WebhookURL != "" && d.Webhooks != nil {
		eventType := webhook.EventBatchCompleted
		if view.Status == models.BatchFailed {
			eventType = webhook.EventBatchFailed
		}
		d.Webhooks.DeliverAsync(req.WebhookURL, req.WebhookSecret, &webhook.Event{
			Type:      eventType,
			JobID:     view.ID,
			Timestamp: time.Now().Unix(),
			Data:      view,
		})
	}
}
