package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/camguard/camguard"
)

const vertexCols = `ai_vertex.id, ai_vertex.name, ai_vertex.description, ai_vertex.types, ai_vertex.meta, COALESCE(ai_vertex.server_id, 0), ai_vertex.sequence_id, ai_vertex.created_at, ai_vertex.updated_at`

func scanVertex(sc scanner) (*camguard.Vertex, error) {
	var v camguard.Vertex
	err := sc.Scan(&v.ID, &v.Name, &v.Description, &v.Types, &v.Meta,
		&v.ServerID, &v.SequenceID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func insertVertex(ctx context.Context, tx pgx.Tx, sequenceID int64, in camguard.VertexInput) (*camguard.Vertex, error) {
	row := tx.QueryRow(ctx,
		`INSERT INTO ai_vertex (name, description, types, meta, server_id, sequence_id)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+vertexCols,
		text(in.Name), text(in.Description), intsArg(in.Types), jsonArg(in.Meta),
		in.ServerID, sequenceID,
	)
	return scanVertex(row)
}

// CreateVertices inserts the submitted vertexes of a fresh sequence in one
// transaction. It returns them keyed by the submission's unique_id (for edge
// derivation) and in submission order.
func (s *PGStore) CreateVertices(ctx context.Context, sequenceID int64, inputs []camguard.VertexInput) (map[string]*camguard.Vertex, []*camguard.Vertex, error) {
	byUID := make(map[string]*camguard.Vertex, len(inputs))
	created := make([]*camguard.Vertex, 0, len(inputs))

	err := s.tx(ctx, "create vertices", func(tx pgx.Tx) error {
		for _, in := range inputs {
			v, err := insertVertex(ctx, tx, sequenceID, in)
			if err != nil {
				return storeErr("insert vertex", err)
			}
			created = append(created, v)
			if in.UniqueID != "" {
				byUID[in.UniqueID] = v
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return byUID, created, nil
}

// UpdateVertices reconciles the submitted vertexes against the sequence's
// stored ones in one transaction: an input carrying the id of a stored vertex
// updates it in place, any other input inserts a new vertex, and stored
// vertexes no input references are soft-deleted. Wiring keys (unique_id,
// source, destination) are request-scoped and never written.
func (s *PGStore) UpdateVertices(ctx context.Context, sequenceID int64, inputs []camguard.VertexInput, existing []*camguard.Vertex) (map[string]*camguard.Vertex, []*camguard.Vertex, error) {
	current := make(map[int64]*camguard.Vertex, len(existing))
	for _, v := range existing {
		current[v.ID] = v
	}

	byUID := make(map[string]*camguard.Vertex, len(inputs))
	result := make([]*camguard.Vertex, 0, len(inputs))

	err := s.tx(ctx, "update vertices", func(tx pgx.Tx) error {
		kept := make(map[int64]bool, len(inputs))
		for _, in := range inputs {
			var v *camguard.Vertex
			var err error
			if in.ID != nil && current[*in.ID] != nil {
				v, err = updateVertex(ctx, tx, *in.ID, in)
				if err == nil {
					kept[v.ID] = true
				}
			} else {
				v, err = insertVertex(ctx, tx, sequenceID, in)
			}
			if err != nil {
				return storeErr("reconcile vertex", err)
			}
			result = append(result, v)
			if in.UniqueID != "" {
				byUID[in.UniqueID] = v
			}
		}

		var stale []int64
		for id := range current {
			if !kept[id] {
				stale = append(stale, id)
			}
		}
		if len(stale) > 0 {
			_, err := tx.Exec(ctx,
				`UPDATE ai_vertex SET deleted = TRUE, updated_at = NOW() WHERE id = ANY($1)`, stale)
			if err != nil {
				return storeErr("prune vertices", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return byUID, result, nil
}

func updateVertex(ctx context.Context, tx pgx.Tx, id int64, in camguard.VertexInput) (*camguard.Vertex, error) {
	b := &builder{}
	var sets []string
	if in.Name != nil {
		sets = append(sets, "name = "+b.bind(*in.Name))
	}
	if in.Description != nil {
		sets = append(sets, "description = "+b.bind(*in.Description))
	}
	if in.Types != nil {
		sets = append(sets, "types = "+b.bind(in.Types))
	}
	if in.Meta != nil {
		sets = append(sets, "meta = "+b.bind(jsonArg(in.Meta)))
	}
	if in.ServerID != nil {
		sets = append(sets, "server_id = "+b.bind(*in.ServerID))
	}
	sets = append(sets, "updated_at = NOW()")

	row := tx.QueryRow(ctx,
		`UPDATE ai_vertex SET `+strings.Join(sets, ", ")+
			` WHERE id = `+b.bind(id)+` AND deleted = FALSE RETURNING `+vertexCols,
		b.args...)
	return scanVertex(row)
}

// ListVertices returns the live vertexes of a sequence in insertion order.
func (s *PGStore) ListVertices(ctx context.Context, sequenceID int64) ([]*camguard.Vertex, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+vertexCols+` FROM ai_vertex
		 WHERE sequence_id = $1 AND deleted = FALSE ORDER BY id`, sequenceID)
	if err != nil {
		return nil, storeErr("list vertices", err)
	}
	defer rows.Close()

	out := []*camguard.Vertex{}
	for rows.Next() {
		v, err := scanVertex(rows)
		if err != nil {
			return nil, storeErr("scan vertex", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows vertices", err)
	}
	return out, nil
}
