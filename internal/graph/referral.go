package graph

import (
	"context"
	"errors"
	"fmt"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/logger"
)

const (
	linkUserCypher     = `MERGE (u:User {id: $id})`
	linkReferrerCypher = `MERGE (u:User {id: $id})
MERGE (r:User {id: $referrer})
MERGE (u)-[:REFERRED_BY]->(r)`
	uplineCypher = `MATCH (u:User {id: $id})
OPTIONAL MATCH p = (u)-[:REFERRED_BY*1..%d]->(a:User)
RETURN a.id AS id, length(p) AS level
ORDER BY level`
)

// errMissingNode means the user was never mirrored, so an empty upline from
// the graph cannot be told apart from a missed link.
var errMissingNode = errors.New("user is not in the referral graph")

// Mirror keeps the referral tree in the graph database and answers upline
// queries from it. The relational store stays the source of truth: reads fall
// back to it whenever the graph is unavailable.
type Mirror struct {
	client   Client
	fallback storage.ReferralGraph
}

var _ storage.ReferralGraph = (*Mirror)(nil)

func NewMirror(client Client, fallback storage.ReferralGraph) *Mirror {
	return &Mirror{client: client, fallback: fallback}
}

// Link records the user and its referrer. Safe to repeat.
func (m *Mirror) Link(ctx context.Context, userID int64, referredBy *int64) error {
	cypher, params := linkUserCypher, map[string]any{"id": userID}
	if referredBy != nil {
		cypher = linkReferrerCypher
		params["referrer"] = *referredBy
	}

	if _, err := m.client.ExecuteWrite(ctx, cypher, params); err != nil {
		return fmt.Errorf("error linking user %d in graph: %w", userID, err)
	}

	return nil
}

// Sync links every given user, parents before children.
func (m *Mirror) Sync(ctx context.Context, users []domain.User) error {
	for _, u := range users {
		if err := m.Link(ctx, u.ID, u.ReferredBy); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mirror) Upline(ctx context.Context, userID int64, depth int) ([]int64, error) {
	if depth <= 0 {
		return nil, nil
	}

	ids, err := m.upline(ctx, userID, depth)
	if err == nil {
		return ids, nil
	}
	if m.fallback == nil {
		return nil, err
	}

	logger.Log.Warn("graph upline failed, using store", logger.Int64("user_id", userID), logger.Error(err))
	ids, fallbackErr := m.fallback.Upline(ctx, userID, depth)
	if fallbackErr != nil {
		return nil, fallbackErr
	}

	if errors.Is(err, errMissingNode) {
		m.relink(ctx, userID, ids)
	}

	return ids, nil
}

// relink restores a user the graph missed, using the direct referrer the
// store just returned.
func (m *Mirror) relink(ctx context.Context, userID int64, upline []int64) {
	var referredBy *int64
	if len(upline) > 0 {
		referredBy = &upline[0]
	}
	if err := m.Link(ctx, userID, referredBy); err != nil {
		logger.Log.Warn("error relinking user in graph", logger.Int64("user_id", userID), logger.Error(err))
	}
}

func (m *Mirror) upline(ctx context.Context, userID int64, depth int) ([]int64, error) {
	res, err := m.client.ExecuteRead(ctx, fmt.Sprintf(uplineCypher, depth), map[string]any{"id": userID})
	if err != nil {
		return nil, fmt.Errorf("error reading upline from graph: %w", err)
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, errMissingNode)
	}

	ids := make([]int64, 0, len(res.Records))
	for _, rec := range res.Records {
		// a mirrored user without a referrer comes back as one null row
		if rec["id"] == nil {
			continue
		}
		id, ok := asInt64(rec["id"])
		if !ok {
			return nil, fmt.Errorf("unexpected upline id %v", rec["id"])
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
