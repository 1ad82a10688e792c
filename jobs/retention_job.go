package jobs

import (
	"context"
	"time"

	"github.com/anjiri1684/studlyf_network/database"
	"github.com/anjiri1684/studlyf_network/metrics"
	"go.uber.org/zap"
)

const reapTimeout = time.Minute

// RetentionJob removes messages and connection requests that have outlived
// the retention window. Reads already hide them, so a missed run only costs
// disk space.
type RetentionJob struct {
	messages    database.MessageStore
	connections database.ConnectionStore
	log         *zap.SugaredLogger
}

func NewRetentionJob(messages database.MessageStore, connections database.ConnectionStore, log *zap.SugaredLogger) *RetentionJob {
	return &RetentionJob{messages: messages, connections: connections, log: log}
}

// Run implements cron.Job.
func (j *RetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), reapTimeout)
	defer cancel()
	j.Reap(ctx)
}

// Reap runs one pass and reports how many records each store removed.
func (j *RetentionJob) Reap(ctx context.Context) (messages, requests int64) {
	j.log.Debug("Running job: retention reaper")

	if j.messages != nil {
		n, err := j.messages.DeleteExpired(ctx)
		if err != nil {
			j.log.Errorw("failed to delete expired messages", "error", err)
		} else {
			messages = n
			metrics.RecordsReaped.WithLabelValues("message").Add(float64(n))
		}
	}

	if j.connections != nil {
		n, err := j.connections.DeleteExpiredRequests(ctx)
		if err != nil {
			j.log.Errorw("failed to delete expired connection requests", "error", err)
		} else {
			requests = n
			metrics.RecordsReaped.WithLabelValues("connection_request").Add(float64(n))
		}
	}

	if messages > 0 || requests > 0 {
		j.log.Infow("Expired records removed", "messages", messages, "connectionRequests", requests)
	}
	return messages, requests
}
