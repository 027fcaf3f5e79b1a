package email

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"garageadmin/internal/logger"
	"garageadmin/internal/metrics"

	"github.com/redis/go-redis/v9"
	"gopkg.in/gomail.v2"
)

const (
	queueKey  = "emails"
	failedKey = "emails:failed"

	maxTries   = 3
	retryDelay = 5 * time.Second
)

type Job struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	HTML    bool      `json:"html"`
	Kind    string    `json:"kind"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	dialer   *gomail.Dialer
	deliver  func(m ...*gomail.Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

func New(fromEmail, fromName string, smtp SMTPConfig, redisAddr string) *Service {
	d := gomail.NewDialer(smtp.Host, smtp.Port, smtp.User, smtp.Password)
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		dialer:   d,
		deliver:  d.DialAndSend,
	}
}

// Send queues a plain-text message.
func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	return s.enqueue(ctx, Job{To: to, Name: name, Subject: subject, Body: body, Kind: "plain"})
}

// SendHTML queues an HTML message. kind labels the message in metrics.
func (s *Service) SendHTML(ctx context.Context, to, subject, body, kind string) error {
	return s.enqueue(ctx, Job{To: to, Subject: subject, Body: body, HTML: true, Kind: kind})
}

func (s *Service) SendReviewDecision(ctx context.Context, to, garageName string, approved bool, reason string) error {
	if approved {
		return s.enqueue(ctx, Job{
			To:      to,
			Name:    garageName,
			Subject: "Your garage has been approved",
			Body:    fmt.Sprintf("Hi %s,\n\nYour subscription is now active.\n\n- Garage Admin", garageName),
			Kind:    "review_decision",
		})
	}
	return s.enqueue(ctx, Job{
		To:      to,
		Name:    garageName,
		Subject: "Your garage request was not approved",
		Body:    fmt.Sprintf("Hi %s,\n\nYour subscription request was rejected.\nReason: %s\n\n- Garage Admin", garageName, reason),
		Kind:    "review_decision",
	})
}

func (s *Service) enqueue(ctx context.Context, job Job) error {
	job.Created = time.Now()

	// Queued as a string so redis-cli and the mocks see the JSON text.
	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Error("failed to queue email", "to", job.To, "kind", job.Kind, "error", err)
		metrics.RecordEmail(job.Kind, "queue_failed")
		return err
	}

	metrics.RecordEmail(job.Kind, "queued")
	logger.Info("email queued", "to", job.To, "subject", job.Subject)
	return nil
}

// Start consumes the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}
	metrics.SetEmailQueueLength(s.QueueLength(ctx))

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	if err := s.deliver(s.message(job)); err != nil {
		logger.Error("failed to send email", "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < maxTries {
			s.requeue(ctx, job)
		} else {
			metrics.RecordEmail(job.Kind, "failed")
			s.saveFailed(ctx, job, err)
		}
		return
	}

	metrics.RecordEmail(job.Kind, "sent")
	logger.Info("email sent", "to", job.To, "attempt", job.Tries)
}

func (s *Service) requeue(ctx context.Context, job Job) {
	select {
	case <-ctx.Done():
	case <-time.After(retryDelay):
	}

	data, _ := json.Marshal(job)
	if err := s.redis.LPush(context.WithoutCancel(ctx), queueKey, string(data)).Err(); err != nil {
		logger.Error("failed to requeue email", "to", job.To, "error", err)
	}
}

func (s *Service) message(job Job) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	if job.Name != "" {
		m.SetAddressHeader("To", job.To, job.Name)
	} else {
		m.SetHeader("To", job.To)
	}
	m.SetHeader("Subject", job.Subject)
	if job.HTML {
		m.SetBody("text/html", job.Body)
	} else {
		m.SetBody("text/plain", job.Body)
	}
	return m
}

func (s *Service) saveFailed(ctx context.Context, job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.WithoutCancel(ctx), failedKey, string(data))
	logger.Error("email moved to failed queue", "to", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.redis.Close()
}
