// Package camguard holds the domain model of the camera-incident monitoring
// backend: companies own camera servers, cameras and AI servers; detection
// sequences are directed graphs of vertexes and edges attached to cameras
// through mappings; edge bridges report incidents against those mappings.
package camguard

import (
	"encoding/json"
	"time"
)

// Sequence is a company-owned named graph of detection vertexes and edges.
type Sequence struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CompanyID   int64     `json:"company_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Vertex is a detection stage bound to an AI server and a set of
// detection-type indexes.
type Vertex struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Types       []int64         `json:"types"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	ServerID    int64           `json:"server_id"`
	SequenceID  int64           `json:"sequence_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Edge is a directed source→destination connection between two vertexes of a
// sequence. A nil SourceID marks the destination vertex as an entry point of
// the sequence.
type Edge struct {
	ID            int64     `json:"id"`
	SequenceID    int64     `json:"sequence_id"`
	SourceID      *int64    `json:"source_id"`
	DestinationID *int64    `json:"destination_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VertexInput is one vertex of a submitted sequence graph.
// UniqueID, Source and Destination are request-scoped wiring keys used only
// to derive edges — they are never persisted. ID is set when the client wants
// an existing vertex updated in place. Field pointers distinguish "absent"
// from zero values so updates stay partial.
type VertexInput struct {
	ID          *int64          `json:"id,omitempty"`
	UniqueID    string          `json:"unique_id,omitempty"`
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Types       []int64         `json:"types,omitempty"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	ServerID    *int64          `json:"server_id,omitempty"`
	Source      []string        `json:"source,omitempty"`
	Destination []string        `json:"destination,omitempty"`
}

// SequenceInput is a full sequence submission: the sequence row plus the
// vertex list its graph is derived from.
type SequenceInput struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CompanyID   int64         `json:"company_id"`
	Vertexes    []VertexInput `json:"vertexes"`
}

// SequenceResult is the outward-facing shape of a reconciled sequence.
// Vertexes and Edges keep submission order and are never reordered.
type SequenceResult struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CompanyID   int64     `json:"company_id"`
	UpdatedAt   time.Time `json:"updated_at"`
	Vertexes    []*Vertex `json:"vertexes"`
	Edges       []*Edge   `json:"edges"`
}

// EdgePair is a derived source→destination pair before persistence.
type EdgePair struct {
	SourceID      *int64
	DestinationID *int64
}
