package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/camguard/camguard"
)

const edgeCols = `ai_edge.id, ai_edge.sequence_id, ai_edge.source_id, ai_edge.destination_id, ai_edge.created_at, ai_edge.updated_at`

func scanEdge(sc scanner) (*camguard.Edge, error) {
	var e camguard.Edge
	err := sc.Scan(&e.ID, &e.SequenceID, &e.SourceID, &e.DestinationID,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func insertEdge(ctx context.Context, tx pgx.Tx, sequenceID int64, p camguard.EdgePair) (*camguard.Edge, error) {
	row := tx.QueryRow(ctx,
		`INSERT INTO ai_edge (sequence_id, source_id, destination_id)
		 VALUES ($1, $2, $3) RETURNING `+edgeCols,
		sequenceID, p.SourceID, p.DestinationID,
	)
	return scanEdge(row)
}

// CreateEdges persists derived pairs in one transaction, in derivation order.
func (s *PGStore) CreateEdges(ctx context.Context, sequenceID int64, pairs []camguard.EdgePair) ([]*camguard.Edge, error) {
	created := make([]*camguard.Edge, 0, len(pairs))
	err := s.tx(ctx, "create edges", func(tx pgx.Tx) error {
		for _, p := range pairs {
			e, err := insertEdge(ctx, tx, sequenceID, p)
			if err != nil {
				return storeErr("insert edge", err)
			}
			created = append(created, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateEdges reconciles derived pairs against the sequence's stored edges in
// one transaction: a stored edge matching a pair exactly is kept, stored edges
// no pair matches are soft-deleted, and the rest of the pairs are inserted.
// The returned list holds kept and created edges in derivation order.
func (s *PGStore) UpdateEdges(ctx context.Context, sequenceID int64, pairs []camguard.EdgePair, existing []*camguard.Edge) ([]*camguard.Edge, error) {
	kept, removed := camguard.MatchEdges(pairs, existing)

	result := make([]*camguard.Edge, 0, len(pairs))
	err := s.tx(ctx, "update edges", func(tx pgx.Tx) error {
		if len(removed) > 0 {
			stale := make([]int64, 0, len(removed))
			for _, e := range removed {
				stale = append(stale, e.ID)
			}
			_, err := tx.Exec(ctx,
				`UPDATE ai_edge SET deleted = TRUE, updated_at = NOW() WHERE id = ANY($1)`, stale)
			if err != nil {
				return storeErr("prune edges", err)
			}
		}
		for i, p := range pairs {
			if e := kept[i]; e != nil {
				result = append(result, e)
				continue
			}
			e, err := insertEdge(ctx, tx, sequenceID, p)
			if err != nil {
				return storeErr("insert edge", err)
			}
			result = append(result, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListEdges returns the live edges of a sequence in insertion order.
func (s *PGStore) ListEdges(ctx context.Context, sequenceID int64) ([]*camguard.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+edgeCols+` FROM ai_edge
		 WHERE sequence_id = $1 AND deleted = FALSE ORDER BY id`, sequenceID)
	if err != nil {
		return nil, storeErr("list edges", err)
	}
	defer rows.Close()

	out := []*camguard.Edge{}
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, storeErr("scan edge", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows edges", err)
	}
	return out, nil
}
