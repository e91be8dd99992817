package camguard

import (
	"context"
	"time"
)

// Store defines the persistence contract of the backend. Every read excludes
// soft-deleted rows unless the query says otherwise, and every Remove is a
// soft delete. Reconciliation of a sequence graph commits each sub-step in
// its own transaction; the pipeline as a whole is deliberately not atomic.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Companies
	CreateCompany(ctx context.Context, in CompanyInput) (*Company, error)
	GetCompany(ctx context.Context, id int64) (*Company, error)
	UpdateCompany(ctx context.Context, id int64, in CompanyInput) (*Company, error)
	RemoveCompany(ctx context.Context, id int64) error
	ListCompanies(ctx context.Context, q ListQuery) ([]*Company, error)

	// Users
	CreateUser(ctx context.Context, in UserInput, token string) (*User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByToken(ctx context.Context, token string) (*User, error)
	ListUsers(ctx context.Context, q ListQuery) ([]*User, error)

	// Camera servers
	CreateCamServer(ctx context.Context, in CamServerInput, accessToken string) (*CamServer, error)
	GetCamServer(ctx context.Context, id int64) (*CamServer, error)
	GetCamServerByAccessToken(ctx context.Context, token string) (*CamServer, error)
	UpdateCamServer(ctx context.Context, id int64, in CamServerInput) (*CamServer, error)
	RemoveCamServer(ctx context.Context, id int64) error
	ListCamServers(ctx context.Context, q ListQuery) ([]*CamServer, error)

	// Cameras
	CreateCamera(ctx context.Context, in CameraInput) (*Camera, error)
	GetCamera(ctx context.Context, id int64) (*Camera, error)
	UpdateCamera(ctx context.Context, id int64, in CameraInput) (*Camera, error)
	// SetCameraLive flips the liveness flag and always bumps updated_at so
	// feed streams observe the change.
	SetCameraLive(ctx context.Context, id int64, live bool) (*Camera, error)
	RemoveCamera(ctx context.Context, id int64) error
	ListCameras(ctx context.Context, q ListQuery) ([]*Camera, error)
	ListCamerasByServer(ctx context.Context, camServerID int64, q ListQuery) ([]*Camera, error)
	CountCamerasByServer(ctx context.Context, camServerID int64, updatedBefore time.Time) (int, error)

	// AI servers
	CreateAIServer(ctx context.Context, in AIServerInput) (*AIServer, error)
	GetAIServer(ctx context.Context, id int64) (*AIServer, error)
	UpdateAIServer(ctx context.Context, id int64, in AIServerInput) (*AIServer, error)
	RemoveAIServer(ctx context.Context, id int64) error
	ListAIServers(ctx context.Context, q ListQuery) ([]*AIServer, error)

	// AI types
	CreateAIType(ctx context.Context, in AITypeInput) (*AIType, error)
	GetAIType(ctx context.Context, id int64) (*AIType, error)
	UpdateAIType(ctx context.Context, id int64, in AITypeInput) (*AIType, error)
	RemoveAIType(ctx context.Context, id int64) error
	ListAITypes(ctx context.Context, q ListQuery) ([]*AIType, error)

	// Sequences
	CreateSequence(ctx context.Context, in SequenceInput) (*SequenceResult, error)
	GetSequence(ctx context.Context, id int64) (*Sequence, error)
	GetSequenceGraph(ctx context.Context, id int64) (*SequenceResult, error)
	UpdateSequence(ctx context.Context, id int64, in SequenceInput) (*SequenceResult, error)
	RemoveSequence(ctx context.Context, id int64) error
	ListSequences(ctx context.Context, q ListQuery) ([]*Sequence, error)
	// ListSequenceGraphsByServer returns the sequences mapped to any camera
	// of the given camera server, with their graphs materialized.
	ListSequenceGraphsByServer(ctx context.Context, camServerID int64, q ListQuery) ([]*SequenceResult, error)
	CountSequencesByServer(ctx context.Context, camServerID int64, updatedBefore time.Time) (int, error)

	// Vertexes and edges. These are the sequence reconciler's building
	// blocks; handlers normally go through the Sequence operations above.
	CreateVertices(ctx context.Context, sequenceID int64, inputs []VertexInput) (map[string]*Vertex, []*Vertex, error)
	UpdateVertices(ctx context.Context, sequenceID int64, inputs []VertexInput, existing []*Vertex) (map[string]*Vertex, []*Vertex, error)
	ListVertices(ctx context.Context, sequenceID int64) ([]*Vertex, error)
	CreateEdges(ctx context.Context, sequenceID int64, pairs []EdgePair) ([]*Edge, error)
	UpdateEdges(ctx context.Context, sequenceID int64, pairs []EdgePair, existing []*Edge) ([]*Edge, error)
	ListEdges(ctx context.Context, sequenceID int64) ([]*Edge, error)

	// Mappings
	CreateMapping(ctx context.Context, in MappingInput) (*Mapping, error)
	GetMapping(ctx context.Context, id int64) (*Mapping, error)
	UpdateMapping(ctx context.Context, id int64, in MappingInput) (*Mapping, error)
	RemoveMapping(ctx context.Context, id int64) error
	ListMappings(ctx context.Context, q ListQuery) ([]*Mapping, error)
	ListMappingsByServer(ctx context.Context, camServerID int64, q ListQuery) ([]*Mapping, error)

	// Incidents
	CreateIncident(ctx context.Context, in IncidentInput, cameraID int64, location string) (*Incident, error)
	GetIncident(ctx context.Context, id int64) (*Incident, error)
	UpdateIncidentMeta(ctx context.Context, id int64, meta []byte) (*Incident, error)
	SetIncidentFlags(ctx context.Context, id int64, acknowledged *time.Time, inaccurate bool) (*Incident, error)
	// MarkIncident sets the acknowledged timestamp or the inaccurate flag
	// and records who did it on the incident's meta.
	MarkIncident(ctx context.Context, id int64, acknowledged *time.Time, inaccurate *bool, byUser string) (*Incident, error)
	RemoveIncident(ctx context.Context, id int64) error
	ListIncidents(ctx context.Context, q ListQuery) ([]*Incident, error)
	ListIncidentsByCompany(ctx context.Context, companyID int64, q ListQuery) ([]*Incident, error)
	ListIncidentsByServer(ctx context.Context, camServerID int64, q ListQuery) ([]*Incident, error)
	CountIncidentsByServer(ctx context.Context, camServerID int64, updatedBefore time.Time) (int, error)
}
