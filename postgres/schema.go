package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS company (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    logo        TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted     BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS users (
    id           BIGSERIAL PRIMARY KEY,
    email        TEXT NOT NULL UNIQUE,
    full_name    TEXT NOT NULL DEFAULT '',
    token        TEXT NOT NULL UNIQUE,
    is_active    BOOLEAN NOT NULL DEFAULT TRUE,
    is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
    company_id   BIGINT REFERENCES company(id),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS cam_server (
    id           BIGSERIAL PRIMARY KEY,
    name         TEXT NOT NULL,
    location     TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    connection   TEXT NOT NULL DEFAULT '',
    access_token TEXT UNIQUE,
    is_active    BOOLEAN NOT NULL DEFAULT FALSE,
    is_live      BOOLEAN NOT NULL DEFAULT FALSE,
    company_id   BIGINT REFERENCES company(id),
    meta         JSONB,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS camera (
    id            BIGSERIAL PRIMARY KEY,
    name          TEXT NOT NULL,
    location      TEXT NOT NULL DEFAULT '',
    description   TEXT NOT NULL DEFAULT '',
    connection    TEXT NOT NULL DEFAULT '',
    is_active     BOOLEAN NOT NULL DEFAULT FALSE,
    is_live       BOOLEAN NOT NULL DEFAULT FALSE,
    cam_server_id BIGINT NOT NULL REFERENCES cam_server(id),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted       BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS ai_server (
    id           BIGSERIAL PRIMARY KEY,
    name         TEXT NOT NULL,
    location     TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    connection   TEXT NOT NULL DEFAULT '',
    vertex_types BIGINT[] NOT NULL DEFAULT '{}',
    is_active    BOOLEAN NOT NULL DEFAULT FALSE,
    is_live      BOOLEAN NOT NULL DEFAULT FALSE,
    company_id   BIGINT REFERENCES company(id),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS ai_type (
    id          BIGSERIAL PRIMARY KEY,
    index       BIGINT NOT NULL UNIQUE,
    severity    BIGINT NOT NULL DEFAULT 50,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted     BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS ai_sequence (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    company_id  BIGINT NOT NULL REFERENCES company(id),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted     BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS ai_vertex (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    types       BIGINT[] NOT NULL DEFAULT '{}',
    meta        JSONB,
    server_id   BIGINT REFERENCES ai_server(id),
    sequence_id BIGINT NOT NULL REFERENCES ai_sequence(id),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted     BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS ai_edge (
    id             BIGSERIAL PRIMARY KEY,
    sequence_id    BIGINT NOT NULL REFERENCES ai_sequence(id),
    source_id      BIGINT REFERENCES ai_vertex(id),
    destination_id BIGINT REFERENCES ai_vertex(id),
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted        BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS cam_ai_mapping (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL DEFAULT '',
    meta        JSONB,
    sequence_id BIGINT NOT NULL REFERENCES ai_sequence(id),
    camera_id   BIGINT NOT NULL REFERENCES camera(id),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted     BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS incident (
    id            BIGSERIAL PRIMARY KEY,
    uuid          UUID NOT NULL,
    type          BIGINT[] NOT NULL DEFAULT '{}',
    ai_mapping_id BIGINT NOT NULL REFERENCES cam_ai_mapping(id),
    camera_id     BIGINT NOT NULL REFERENCES camera(id),
    location      TEXT NOT NULL DEFAULT '',
    acknowledged  TIMESTAMPTZ,
    inaccurate    BOOLEAN NOT NULL DEFAULT FALSE,
    meta          JSONB,
    extra         JSONB,
    count         BIGINT NOT NULL DEFAULT 0,
    frame         TEXT NOT NULL DEFAULT '',
    video         TEXT NOT NULL DEFAULT '',
    people        BIGINT NOT NULL DEFAULT 0,
    objects       BIGINT NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted       BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_users_token          ON users(token);
CREATE INDEX IF NOT EXISTS idx_cam_server_company   ON cam_server(company_id);
CREATE INDEX IF NOT EXISTS idx_cam_server_token     ON cam_server(access_token);
CREATE INDEX IF NOT EXISTS idx_camera_server        ON camera(cam_server_id);
CREATE INDEX IF NOT EXISTS idx_ai_server_company    ON ai_server(company_id);
CREATE INDEX IF NOT EXISTS idx_ai_sequence_company  ON ai_sequence(company_id);
CREATE INDEX IF NOT EXISTS idx_ai_vertex_sequence   ON ai_vertex(sequence_id);
CREATE INDEX IF NOT EXISTS idx_ai_vertex_server     ON ai_vertex(server_id);
CREATE INDEX IF NOT EXISTS idx_ai_edge_sequence     ON ai_edge(sequence_id);
CREATE INDEX IF NOT EXISTS idx_mapping_sequence     ON cam_ai_mapping(sequence_id);
CREATE INDEX IF NOT EXISTS idx_mapping_camera       ON cam_ai_mapping(camera_id);
CREATE INDEX IF NOT EXISTS idx_incident_mapping     ON incident(ai_mapping_id);
CREATE INDEX IF NOT EXISTS idx_incident_camera      ON incident(camera_id);
CREATE INDEX IF NOT EXISTS idx_incident_created     ON incident(created_at);
`

// CreateSchema creates all tables and indexes if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return storeErr("create schema", err)
	}
	return nil
}

// DropSchema drops every table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS
		incident, cam_ai_mapping, ai_edge, ai_vertex, ai_sequence,
		ai_type, ai_server, camera, cam_server, users, company CASCADE;`)
	if err != nil {
		return storeErr("drop schema", err)
	}
	return nil
}
