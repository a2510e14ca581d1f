// redis_consumer.go is a secondary, BullMQ-compatible ingestion path: a
// direct Redis LIST consumer using the same wire format a TypeScript
// producer (BullMQ) would emit, for deployments that enqueue jobs without
// going through asynq. Retargeted from the teacher's
// processor.DocumentProcessorInterface boundary to Handler.ProcessDocument;
// the Buffer/base64 payload decoding and Redis pub/sub event publishing are
// carried over unchanged.
package queue

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/logging"
)

// RedisJobData represents a job from the Redis queue.
type RedisJobData struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Payload    JobPayload `json:"payload"`
	CreatedAt  time.Time  `json:"createdAt"`
	Attempts   int        `json:"attempts"`
	MaxRetries int        `json:"maxRetries"`
}

// JobPayload contains the actual job data.
type JobPayload struct {
	JobID      string                 `json:"jobId"`
	EntityID   string                 `json:"entityId"`
	EntityType string                 `json:"entityType"`
	Filename   string                 `json:"filename"`
	MimeType   string                 `json:"mimeType,omitempty"`
	FileBuffer []byte                 // set by custom UnmarshalJSON
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// UnmarshalJSON supports both base64 string format and the legacy Node.js
// Buffer object format for fileBuffer.
func (p *JobPayload) UnmarshalJSON(data []byte) error {
	type Alias JobPayload
	aux := &struct {
		FileBuffer interface{} `json:"fileBuffer,omitempty"`
		*Alias
	}{Alias: (*Alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("failed to unmarshal JobPayload: %w", err)
	}

	if aux.FileBuffer == nil {
		return nil
	}
	switch v := aux.FileBuffer.(type) {
	case string:
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return fmt.Errorf("failed to decode base64 fileBuffer: %w", err)
		}
		p.FileBuffer = decoded
	case map[string]interface{}:
		if bufferType, ok := v["type"].(string); ok && bufferType == "Buffer" {
			dataArray, ok := v["data"].([]interface{})
			if !ok {
				return fmt.Errorf("Buffer object missing 'data' array")
			}
			p.FileBuffer = make([]byte, len(dataArray))
			for i, val := range dataArray {
				byteVal, ok := val.(float64)
				if !ok {
					return fmt.Errorf("invalid byte value in Buffer data array at index %d", i)
				}
				p.FileBuffer[i] = byte(byteVal)
			}
		} else {
			return fmt.Errorf("invalid Buffer object format (missing or incorrect 'type' field)")
		}
	default:
		return fmt.Errorf("fileBuffer must be either base64 string or Buffer object, got %T", v)
	}
	return nil
}

// RedisConsumer handles job consumption from Redis queue via direct LIST
// operations.
type RedisConsumer struct {
	client  *redis.Client
	handler *Handler
	config  *RedisConsumerConfig
	log     *logging.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// RedisConsumerConfig holds consumer configuration.
type RedisConsumerConfig struct {
	RedisURL          string
	QueueName         string
	Concurrency       int
	Handler           *Handler
	ProcessingTimeout int64
}

// NewRedisConsumer creates a new Redis-based queue consumer.
func NewRedisConsumer(cfg *RedisConsumerConfig, log *logging.Logger) (*RedisConsumer, error) {
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("RedisURL is required")
	}
	if cfg.QueueName == "" {
		cfg.QueueName = "resume-match:jobs"
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("Handler is required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	consumerCtx, cancel := context.WithCancel(context.Background())
	return &RedisConsumer{
		client:  client,
		handler: cfg.Handler,
		config:  cfg,
		log:     log,
		ctx:     consumerCtx,
		cancel:  cancel,
	}, nil
}

// Start begins processing jobs from the queue.
func (c *RedisConsumer) Start() error {
	c.log.Info("starting redis queue consumer", "concurrency", c.config.Concurrency, "queue", c.config.QueueName)
	for i := 0; i < c.config.Concurrency; i++ {
		c.wg.Add(1)
		go c.worker(i)
	}
	return nil
}

// Stop gracefully stops the consumer.
func (c *RedisConsumer) Stop() error {
	c.log.Info("stopping redis queue consumer")
	c.cancel()
	c.wg.Wait()
	return c.client.Close()
}

func (c *RedisConsumer) worker(id int) {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			if err := c.processNextJob(); err != nil && err.Error() != "no jobs available" {
				c.log.Warn("redis worker error", "worker", id, "error", err)
				time.Sleep(1 * time.Second)
			}
		}
	}
}

func (c *RedisConsumer) processNextJob() error {
	result, err := c.client.BRPop(c.ctx, 5*time.Second, c.config.QueueName).Result()
	if err != nil {
		if err == redis.Nil {
			return fmt.Errorf("no jobs available")
		}
		return fmt.Errorf("failed to fetch job: %w", err)
	}
	if len(result) < 2 {
		return fmt.Errorf("invalid job result")
	}
	jobID := result[1]

	jobData, err := c.client.HGet(c.ctx, fmt.Sprintf("%s:data", c.config.QueueName), jobID).Result()
	if err != nil {
		return fmt.Errorf("failed to get job data: %w", err)
	}

	var job RedisJobData
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		return fmt.Errorf("failed to unmarshal job: %w", err)
	}

	c.updateJobStatus(job.Payload.JobID, "processing", nil)

	processResult, err := c.processJob(&job)
	if err != nil {
		job.Attempts++
		if job.Attempts < job.MaxRetries {
			updatedData, _ := json.Marshal(job)
			c.client.HSet(c.ctx, fmt.Sprintf("%s:data", c.config.QueueName), job.ID, updatedData)
			c.client.LPush(c.ctx, c.config.QueueName, job.ID)
			c.log.Warn("job re-queued for retry", "job_id", job.Payload.JobID, "attempt", job.Attempts, "max_retries", job.MaxRetries)
		} else {
			c.updateJobStatus(job.Payload.JobID, "failed", map[string]interface{}{"error": err.Error(), "attempts": job.Attempts})
		}
		return nil
	}

	c.updateJobStatus(job.Payload.JobID, "completed", processResult)
	return nil
}

func (c *RedisConsumer) processJob(job *RedisJobData) (*JobResult, error) {
	timeout := 300 * time.Second
	if c.config.ProcessingTimeout > 0 {
		timeout = time.Duration(c.config.ProcessingTimeout) * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := c.handler.ProcessDocument(ctx, JobRequest{
		JobID:      job.Payload.JobID,
		EntityID:   job.Payload.EntityID,
		EntityType: job.Payload.EntityType,
		Filename:   job.Payload.Filename,
		MimeType:   job.Payload.MimeType,
		FileBuffer: job.Payload.FileBuffer,
		Metadata:   job.Payload.Metadata,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("processing timeout: %w", apperr.Timeout(job.Payload.JobID, timeout, err))
		}
		return nil, err
	}
	return &result, nil
}

func (c *RedisConsumer) updateJobStatus(jobID, status string, result interface{}) {
	switch status {
	case "processing":
		c.client.SAdd(c.ctx, fmt.Sprintf("%s:processing", c.config.QueueName), jobID)
	case "completed":
		c.client.SRem(c.ctx, fmt.Sprintf("%s:processing", c.config.QueueName), jobID)
		c.client.SAdd(c.ctx, fmt.Sprintf("%s:completed", c.config.QueueName), jobID)
		if result != nil {
			resultData, _ := json.Marshal(result)
			c.client.HSet(c.ctx, fmt.Sprintf("%s:results", c.config.QueueName), jobID, resultData)
		}
	case "failed":
		c.client.SRem(c.ctx, fmt.Sprintf("%s:processing", c.config.QueueName), jobID)
		c.client.SAdd(c.ctx, fmt.Sprintf("%s:failed", c.config.QueueName), jobID)
		if result != nil {
			errorData, _ := json.Marshal(result)
			c.client.HSet(c.ctx, fmt.Sprintf("%s:errors", c.config.QueueName), jobID, errorData)
		}
	}

	event := map[string]interface{}{
		"event":     fmt.Sprintf("job:%s", status),
		"jobId":     jobID,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	eventData, _ := json.Marshal(event)
	c.client.Publish(c.ctx, fmt.Sprintf("%s:events", c.config.QueueName), eventData)
}

// GetStats returns queue statistics.
func (c *RedisConsumer) GetStats() (map[string]int64, error) {
	ctx := context.Background()
	waiting, _ := c.client.LLen(ctx, c.config.QueueName).Result()
	processing, _ := c.client.SCard(ctx, fmt.Sprintf("%s:processing", c.config.QueueName)).Result()
	completed, _ := c.client.SCard(ctx, fmt.Sprintf("%s:completed", c.config.QueueName)).Result()
	failed, _ := c.client.SCard(ctx, fmt.Sprintf("%s:failed", c.config.QueueName)).Result()
	return map[string]int64{
		"waiting":    waiting,
		"processing": processing,
		"completed":  completed,
		"failed":     failed,
	}, nil
}
