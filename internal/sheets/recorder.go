package sheets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository"
	"github.com/saharamess/messbot/internal/service"
)

const (
	queueSize     = 512
	appendTimeout = 30 * time.Second
	maxAttempts   = 3
)

// Appender is the spreadsheet call the recorder makes.
type Appender interface {
	Append(ctx context.Context, sheet string, row []any) error
}

type rowJob struct {
	sheet string
	row   []any
}

// Recorder is the queued implementation of service.Recorder. Rows that keep
// failing are parked in the dead letter table for the hourly retry job.
type Recorder struct {
	appender Appender
	dlq      *repository.DeadLetterRepository
	queue    chan rowJob
	wg       sync.WaitGroup
	stopOnce sync.Once
	logger   *zap.Logger
}

var _ service.Recorder = (*Recorder)(nil)

func NewRecorder(appender Appender, dlq *repository.DeadLetterRepository, logger *zap.Logger) *Recorder {
	return &Recorder{
		appender: appender,
		dlq:      dlq,
		queue:    make(chan rowJob, queueSize),
		logger:   logger,
	}
}

// Start launches the single append worker. One worker keeps rows in order.
func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.worker()
	r.logger.Info("📄 Sheets recorder started")
}

// Stop closes the queue and waits for the backlog to flush.
func (r *Recorder) Stop() {
	r.stopOnce.Do(func() { close(r.queue) })
	r.wg.Wait()
	r.logger.Info("Sheets recorder stopped")
}

// Record enqueues one row. A sync timestamp is stamped here, before the
// row waits in the queue or in the dead letter table.
func (r *Recorder) Record(sheet string, row []any) {
	stamped := make([]any, 0, len(row)+1)
	stamped = append(stamped, row...)
	stamped = append(stamped, time.Now().Format(time.RFC3339))

	select {
	case r.queue <- rowJob{sheet: sheet, row: stamped}:
	default:
		r.logger.Warn("Sheets queue full", zap.String("sheet", sheet))
		r.deadLetter(rowJob{sheet: sheet, row: stamped}, fmt.Errorf("sheets queue full"))
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for j := range r.queue {
		r.append(j)
	}
}

func (r *Recorder) append(j rowJob) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	backoff := retry.WithMaxRetries(maxAttempts-1, retry.NewExponential(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := r.appender.Append(ctx, j.sheet, j.row); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to append sheet row",
			zap.String("sheet", j.sheet),
			zap.Error(err),
		)
		r.deadLetter(j, err)
	}
}

func (r *Recorder) deadLetter(j rowJob, cause error) {
	if r.dlq == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	letter := &model.DeadLetter{
		Operation: model.OpSheetsAppend,
		Payload:   map[string]any{"sheet": j.sheet, "row": j.row},
		ErrorMsg:  cause.Error(),
	}
	if err := r.dlq.Create(ctx, letter); err != nil {
		r.logger.Error("Failed to park sheet row", zap.Error(err))
	}
}

// Replay attempts one parked append. The retry budget lives in the dead
// letter row.
func (r *Recorder) Replay(ctx context.Context, letter *model.DeadLetter) error {
	sheet, _ := letter.Payload["sheet"].(string)
	if sheet == "" {
		return fmt.Errorf("dead letter %d: no sheet", letter.ID)
	}
	row, ok := letter.Payload["row"].([]any)
	if !ok {
		return fmt.Errorf("dead letter %d: no row", letter.ID)
	}
	return r.appender.Append(ctx, sheet, row)
}
