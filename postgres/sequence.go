package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/camguard/camguard"
)

const sequenceCols = `ai_sequence.id, ai_sequence.name, ai_sequence.description, ai_sequence.company_id, ai_sequence.created_at, ai_sequence.updated_at`

var sequenceFields = map[string]string{
	"id":           "ai_sequence.id",
	"name":         "ai_sequence.name",
	"description":  "ai_sequence.description",
	"company_id":   "ai_sequence.company_id",
	"created_at":   "ai_sequence.created_at",
	"updated_at":   "ai_sequence.updated_at",
	"company.name": "company.name",
}

func scanSequence(sc scanner) (*camguard.Sequence, error) {
	var v camguard.Sequence
	err := sc.Scan(&v.ID, &v.Name, &v.Description, &v.CompanyID,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func sequenceResult(seq *camguard.Sequence, vertexes []*camguard.Vertex, edges []*camguard.Edge) *camguard.SequenceResult {
	return &camguard.SequenceResult{
		ID:          seq.ID,
		Name:        seq.Name,
		Description: seq.Description,
		CompanyID:   seq.CompanyID,
		UpdatedAt:   seq.UpdatedAt,
		Vertexes:    vertexes,
		Edges:       edges,
	}
}

// CreateSequence runs the full reconciliation pipeline for a new submission:
// sequence row, vertexes, edge derivation, edges. Each step commits on its
// own, so a later validation failure leaves the earlier rows in place.
func (s *PGStore) CreateSequence(ctx context.Context, in camguard.SequenceInput) (*camguard.SequenceResult, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO ai_sequence (name, description, company_id)
		 VALUES ($1, $2, $3) RETURNING `+sequenceCols,
		in.Name, in.Description, in.CompanyID)
	seq, err := scanSequence(row)
	if err != nil {
		return nil, storeErr("insert sequence", err)
	}

	byUID, vertexes, err := s.CreateVertices(ctx, seq.ID, in.Vertexes)
	if err != nil {
		return nil, err
	}
	pairs, err := camguard.DeriveEdges(in.Vertexes, byUID)
	if err != nil {
		return nil, err
	}
	edges, err := s.CreateEdges(ctx, seq.ID, pairs)
	if err != nil {
		return nil, err
	}
	return sequenceResult(seq, vertexes, edges), nil
}

// UpdateSequence reconciles a full resubmission against the stored graph:
// the sequence row is rewritten, vertexes are updated/inserted/pruned, and
// edges are re-derived and matched against the stored ones. As with create,
// the steps commit independently.
func (s *PGStore) UpdateSequence(ctx context.Context, id int64, in camguard.SequenceInput) (*camguard.SequenceResult, error) {
	b := &builder{}
	sets := []string{
		"name = " + b.bind(in.Name),
		"description = " + b.bind(in.Description),
	}
	if in.CompanyID != 0 {
		sets = append(sets, "company_id = "+b.bind(in.CompanyID))
	}
	sets = append(sets, "updated_at = NOW()")

	row := s.db.QueryRow(ctx,
		`UPDATE ai_sequence SET `+strings.Join(sets, ", ")+
			` WHERE id = `+b.bind(id)+` AND deleted = FALSE RETURNING `+sequenceCols,
		b.args...)
	seq, err := scanSequence(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("update sequence", err)
	}

	existing, err := s.ListVertices(ctx, id)
	if err != nil {
		return nil, err
	}
	byUID, vertexes, err := s.UpdateVertices(ctx, id, in.Vertexes, existing)
	if err != nil {
		return nil, err
	}
	pairs, err := camguard.DeriveEdges(in.Vertexes, byUID)
	if err != nil {
		return nil, err
	}
	storedEdges, err := s.ListEdges(ctx, id)
	if err != nil {
		return nil, err
	}
	edges, err := s.UpdateEdges(ctx, id, pairs, storedEdges)
	if err != nil {
		return nil, err
	}
	return sequenceResult(seq, vertexes, edges), nil
}

func (s *PGStore) GetSequence(ctx context.Context, id int64) (*camguard.Sequence, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+sequenceCols+` FROM ai_sequence WHERE id = $1 AND deleted = FALSE`, id)
	seq, err := scanSequence(row)
	if err != nil {
		if isNoRows(err) {
			return nil, camguard.ErrNotFound
		}
		return nil, storeErr("get sequence", err)
	}
	return seq, nil
}

// GetSequenceGraph loads a sequence with its live vertexes and edges.
func (s *PGStore) GetSequenceGraph(ctx context.Context, id int64) (*camguard.SequenceResult, error) {
	seq, err := s.GetSequence(ctx, id)
	if err != nil {
		return nil, err
	}
	vertexes, err := s.ListVertices(ctx, id)
	if err != nil {
		return nil, err
	}
	edges, err := s.ListEdges(ctx, id)
	if err != nil {
		return nil, err
	}
	return sequenceResult(seq, vertexes, edges), nil
}

// RemoveSequence cascades the soft delete over the graph: edges first, then
// vertexes, then the sequence row, all in one transaction.
func (s *PGStore) RemoveSequence(ctx context.Context, id int64) error {
	return s.tx(ctx, "remove sequence", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE ai_edge SET deleted = TRUE, updated_at = NOW() WHERE sequence_id = $1 AND deleted = FALSE`, id); err != nil {
			return storeErr("remove sequence edges", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE ai_vertex SET deleted = TRUE, updated_at = NOW() WHERE sequence_id = $1 AND deleted = FALSE`, id); err != nil {
			return storeErr("remove sequence vertices", err)
		}
		ct, err := tx.Exec(ctx,
			`UPDATE ai_sequence SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`, id)
		if err != nil {
			return storeErr("remove sequence", err)
		}
		if ct.RowsAffected() == 0 {
			return camguard.ErrNotFound
		}
		return nil
	})
}

func (s *PGStore) ListSequences(ctx context.Context, q camguard.ListQuery) ([]*camguard.Sequence, error) {
	b := &builder{}
	conds, err := b.where("ai_sequence", q, sequenceFields)
	if err != nil {
		return nil, err
	}
	order, err := orderBy("ai_sequence", q, sequenceFields)
	if err != nil {
		return nil, err
	}
	join := ""
	if hopUsed(q, "company") {
		join = ` LEFT JOIN company ON company.id = ai_sequence.company_id`
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+sequenceCols+` FROM ai_sequence`+join+whereSQL(conds)+order+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list sequences", err)
	}
	defer rows.Close()

	out := []*camguard.Sequence{}
	for rows.Next() {
		seq, err := scanSequence(rows)
		if err != nil {
			return nil, storeErr("scan sequence", err)
		}
		out = append(out, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows sequences", err)
	}
	return out, nil
}

// ListSequenceGraphsByServer returns, with their graphs, the sequences mapped
// onto any camera of the server. A sequence mapped to several cameras appears
// once. It backs the bridge's sequence pull and the sequence feed stream.
func (s *PGStore) ListSequenceGraphsByServer(ctx context.Context, camServerID int64, q camguard.ListQuery) ([]*camguard.SequenceResult, error) {
	b := &builder{}
	conds := []string{
		"camera.cam_server_id = " + b.bind(camServerID),
		"cam_ai_mapping.deleted = FALSE",
		"camera.deleted = FALSE",
	}
	more, err := b.where("ai_sequence", q, sequenceFields)
	if err != nil {
		return nil, err
	}
	conds = append(conds, more...)
	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT `+sequenceCols+` FROM ai_sequence
		 JOIN cam_ai_mapping ON cam_ai_mapping.sequence_id = ai_sequence.id
		 JOIN camera ON camera.id = cam_ai_mapping.camera_id`+
			whereSQL(conds)+` ORDER BY ai_sequence.id DESC`+limitOffset(q),
		b.args...)
	if err != nil {
		return nil, storeErr("list sequences by server", err)
	}
	defer rows.Close()

	seqs := []*camguard.Sequence{}
	for rows.Next() {
		seq, err := scanSequence(rows)
		if err != nil {
			return nil, storeErr("scan sequence", err)
		}
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("rows sequences by server", err)
	}
	rows.Close()

	out := make([]*camguard.SequenceResult, 0, len(seqs))
	for _, seq := range seqs {
		vertexes, err := s.ListVertices(ctx, seq.ID)
		if err != nil {
			return nil, err
		}
		edges, err := s.ListEdges(ctx, seq.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, sequenceResult(seq, vertexes, edges))
	}
	return out, nil
}

func (s *PGStore) CountSequencesByServer(ctx context.Context, camServerID int64, updatedBefore time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT ai_sequence.id) FROM ai_sequence
		 JOIN cam_ai_mapping ON cam_ai_mapping.sequence_id = ai_sequence.id
		 JOIN camera ON camera.id = cam_ai_mapping.camera_id
		 WHERE camera.cam_server_id = $1
		   AND ai_sequence.deleted = FALSE AND cam_ai_mapping.deleted = FALSE AND camera.deleted = FALSE
		   AND ai_sequence.updated_at <= $2`,
		camServerID, updatedBefore).Scan(&n)
	if err != nil {
		return 0, storeErr("count sequences by server", err)
	}
	return n, nil
}
