// Package events publishes committed ledger changes for downstream consumers.
// Publishing is fire-and-forget: a lost event never affects the ledger itself.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
	"github.com/redis/go-redis/v9"
	"time"
)

const Channel = "ledger_events"

type Kind string

const (
	TransactionCreated  Kind = "transaction.created"
	TransactionResolved Kind = "transaction.resolved"
	AccrualFinished     Kind = "accrual.finished"
)

type Event struct {
	Kind          Kind         `json:"kind"`
	TransactionID int64        `json:"transactionId,omitempty"`
	UserID        int64        `json:"userId,omitempty"`
	Type          string       `json:"type,omitempty"`
	Status        string       `json:"status,omitempty"`
	Amount        string       `json:"amount,omitempty"`
	Meta          *domain.Meta `json:"meta,omitempty"`
	Report        *Report      `json:"report,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
}

type Report struct {
	Date        string `json:"date"`
	Credited    int    `json:"credited"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
	Commissions int    `json:"commissions"`
}

func FromTransaction(kind Kind, t domain.Transaction) Event {
	meta := t.Meta
	return Event{
		Kind:          kind,
		TransactionID: t.ID,
		UserID:        t.UserID,
		Type:          string(t.Type),
		Status:        string(t.Status),
		Amount:        t.Amount.String(),
		Meta:          &meta,
	}
}

func FromReport(r domain.AccrualReport) Event {
	return Event{
		Kind: AccrualFinished,
		Report: &Report{
			Date:        r.Date.String(),
			Credited:    r.Credited,
			Skipped:     r.Skipped,
			Failed:      r.Failed,
			Commissions: r.Commissions,
		},
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

type RedisPublisher struct {
	rdb     redis.UniversalClient
	channel string
}

func NewRedisPublisher(rdb redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: Channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.Log.Debug("ledger event published",
		logger.String("kind", string(e.Kind)),
		logger.Int64("transaction_id", e.TransactionID),
		logger.Int64("user_id", e.UserID))

	return nil
}

// Emit publishes and only logs failures.
func Emit(ctx context.Context, p Publisher, e Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.Log.Warn("error while publishing ledger event", logger.String("kind", string(e.Kind)), logger.Error(err))
	}
}
