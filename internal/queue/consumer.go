// Consumer routes asynq tasks from the primary ingestion queue to Handler,
// generalized from the teacher's original process-document routing: the
// task payload shape, retry/error-handler wiring, and per-task timeout
// context are carried over unchanged, only the handler boundary changed
// from DocumentProcessorInterface to Handler.ProcessDocument.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/logging"
	"github.com/nexus-talent/resume-match/internal/matching"
)

// TaskProcessDocument is the asynq task type name for document ingestion.
const TaskProcessDocument = "process-document"

// TaskFindMatches is the asynq task type name for a C11 match-orchestration
// run against one job posting.
const TaskFindMatches = "find-matches"

// JobData is the wire shape of a process-document task payload.
type JobData struct {
	JobID      string                 `json:"jobId"`
	EntityID   string                 `json:"entityId"`
	EntityType string                 `json:"entityType"`
	Filename   string                 `json:"filename"`
	MimeType   string                 `json:"mimeType,omitempty"`
	FileBuffer []byte                 `json:"fileBuffer,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// FindMatchesJobData is the wire shape of a find-matches task payload,
// mirroring matching.FindMatchesOptions.
type FindMatchesJobData struct {
	JobPostingID        string  `json:"jobPostingId"`
	MinScore            float64 `json:"minScore,omitempty"`
	Limit               int     `json:"limit,omitempty"`
	IncludeBreakdown    bool    `json:"includeBreakdown,omitempty"`
	ExcludeDisqualified bool    `json:"excludeDisqualified,omitempty"`
}

// Consumer handles job consumption from the asynq/Redis-backed queue.
type Consumer struct {
	client  *asynq.Client
	server  *asynq.Server
	mux     *asynq.ServeMux
	handler *Handler
	matcher *matching.Orchestrator
	config  *ConsumerConfig
	log     *logging.Logger
}

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	RedisURL          string
	QueueName         string
	Concurrency       int
	Handler           *Handler
	Matcher           *matching.Orchestrator // optional; registers the find-matches task when set
	ProcessingTimeout int64                  // milliseconds, default 300000 (5 minutes)
}

// NewConsumer creates a new queue consumer.
func NewConsumer(cfg *ConsumerConfig, log *logging.Logger) (*Consumer, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}
	if cfg.QueueName == "" {
		return nil, fmt.Errorf("QueueName is required")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("Handler is required")
	}

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				cfg.QueueName: 10,
				"default":     1,
			},
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				delay := time.Duration(5*(1<<uint(n))) * time.Second
				if delay > 60*time.Second {
					delay = 60 * time.Second
				}
				return delay
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error("task processing error", "type", task.Type(), "error", err)
			}),
		},
	)

	mux := asynq.NewServeMux()

	consumer := &Consumer{
		client:  client,
		server:  server,
		mux:     mux,
		handler: cfg.Handler,
		matcher: cfg.Matcher,
		config:  cfg,
		log:     log,
	}

	mux.HandleFunc(TaskProcessDocument, consumer.handleProcessDocument)
	if cfg.Matcher != nil {
		mux.HandleFunc(TaskFindMatches, consumer.handleFindMatches)
	}

	return consumer, nil
}

// Start starts the queue consumer.
func (c *Consumer) Start(ctx context.Context) error {
	c.log.Info("starting queue consumer", "concurrency", c.config.Concurrency, "queue", c.config.QueueName)
	go func() {
		if err := c.server.Run(c.mux); err != nil {
			c.log.Error("queue consumer stopped with error", "error", err)
		}
	}()
	return nil
}

// Stop stops the queue consumer gracefully.
func (c *Consumer) Stop(ctx context.Context) error {
	c.log.Info("stopping queue consumer")
	c.server.Shutdown()
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close client: %w", err)
	}
	return nil
}

func (c *Consumer) handleProcessDocument(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	var job JobData
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return fmt.Errorf("failed to unmarshal job data: %w", err)
	}

	timeout := 300 * time.Second
	if c.config.ProcessingTimeout > 0 {
		timeout = time.Duration(c.config.ProcessingTimeout) * time.Millisecond
	}

	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := c.handler.ProcessDocument(taskCtx, JobRequest{
		JobID:      job.JobID,
		EntityID:   job.EntityID,
		EntityType: job.EntityType,
		Filename:   job.Filename,
		MimeType:   job.MimeType,
		FileBuffer: job.FileBuffer,
		Metadata:   job.Metadata,
	})

	duration := time.Since(start)
	if err != nil {
		if taskCtx.Err() == context.DeadlineExceeded {
			timeoutErr := apperr.Timeout(job.JobID, timeout, err)
			c.log.Error("job timed out", "job_id", job.JobID, "duration_ms", duration.Milliseconds())
			return fmt.Errorf("processing timeout: %w", timeoutErr)
		}
		c.log.Error("job failed", "job_id", job.JobID, "duration_ms", duration.Milliseconds(), "error", err)
		return fmt.Errorf("document processing failed: %w", err)
	}

	c.log.Info("job completed", "job_id", job.JobID, "entity_id", result.EntityID, "duration_ms", duration.Milliseconds(), "confidence", result.Confidence)
	return nil
}

// handleFindMatches runs C11's find_matches for one job posting and persists
// every resulting MatchResult, per spec.md §4.11's ranking + persistence
// steps.
func (c *Consumer) handleFindMatches(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	var job FindMatchesJobData
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return fmt.Errorf("failed to unmarshal find-matches job data: %w", err)
	}

	timeout := 300 * time.Second
	if c.config.ProcessingTimeout > 0 {
		timeout = time.Duration(c.config.ProcessingTimeout) * time.Millisecond
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := c.matcher.FindMatches(taskCtx, job.JobPostingID, matching.FindMatchesOptions{
		MinScore:            job.MinScore,
		Limit:               job.Limit,
		IncludeBreakdown:    job.IncludeBreakdown,
		ExcludeDisqualified: job.ExcludeDisqualified,
	})
	if err != nil {
		if taskCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("processing timeout: %w", apperr.Timeout(job.JobPostingID, timeout, err))
		}
		return fmt.Errorf("find-matches failed: %w", err)
	}

	for _, result := range results {
		if err := c.matcher.PersistMatch(taskCtx, result); err != nil {
			return fmt.Errorf("failed to persist match result: %w", err)
		}
	}

	c.log.Info("find-matches completed", "job_posting_id", job.JobPostingID, "matches", len(results), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// GetStatistics returns consumer statistics.
func (c *Consumer) GetStatistics() map[string]interface{} {
	return map[string]interface{}{
		"concurrency": c.config.Concurrency,
		"queue":       c.config.QueueName,
	}
}
