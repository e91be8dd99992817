package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/feed"
)

// Feed sources adapt the per-server store queries to the publisher's pull
// and count shape.

func feedListQuery(q feed.Query) camguard.ListQuery {
	limit := q.Limit
	if limit == 0 {
		limit = -1
	}
	return camguard.ListQuery{
		Limit:         limit,
		UpdatedBefore: q.UpdatedBefore,
		UpdatedAfter:  q.UpdatedAfter,
	}
}

type cameraSource struct {
	store    camguard.Store
	serverID int64
}

func (s cameraSource) Pull(ctx context.Context, q feed.Query) ([]feed.Snapshot, error) {
	items, err := s.store.ListCamerasByServer(ctx, s.serverID, feedListQuery(q))
	if err != nil {
		return nil, err
	}
	out := make([]feed.Snapshot, 0, len(items))
	for _, v := range items {
		out = append(out, feed.Snapshot{ID: v.ID, Payload: v})
	}
	return out, nil
}

func (s cameraSource) Count(ctx context.Context, updatedBefore time.Time) (int, error) {
	return s.store.CountCamerasByServer(ctx, s.serverID, updatedBefore)
}

type sequenceSource struct {
	store    camguard.Store
	serverID int64
}

func (s sequenceSource) Pull(ctx context.Context, q feed.Query) ([]feed.Snapshot, error) {
	items, err := s.store.ListSequenceGraphsByServer(ctx, s.serverID, feedListQuery(q))
	if err != nil {
		return nil, err
	}
	out := make([]feed.Snapshot, 0, len(items))
	for _, v := range items {
		out = append(out, feed.Snapshot{ID: v.ID, Payload: v})
	}
	return out, nil
}

func (s sequenceSource) Count(ctx context.Context, updatedBefore time.Time) (int, error) {
	return s.store.CountSequencesByServer(ctx, s.serverID, updatedBefore)
}

type incidentSource struct {
	store    camguard.Store
	serverID int64
}

func (s incidentSource) Pull(ctx context.Context, q feed.Query) ([]feed.Snapshot, error) {
	items, err := s.store.ListIncidentsByServer(ctx, s.serverID, feedListQuery(q))
	if err != nil {
		return nil, err
	}
	out := make([]feed.Snapshot, 0, len(items))
	for _, v := range items {
		out = append(out, feed.Snapshot{ID: v.ID, Payload: v})
	}
	return out, nil
}

func (s incidentSource) Count(ctx context.Context, updatedBefore time.Time) (int, error) {
	return s.store.CountIncidentsByServer(ctx, s.serverID, updatedBefore)
}

func (s *server) streamCameras(c fiber.Ctx) error {
	srv, err := s.bridge(c)
	if err != nil {
		return s.fail(c, err)
	}
	return s.stream(c, cameraSource{store: s.store, serverID: srv.ID})
}

func (s *server) streamSequences(c fiber.Ctx) error {
	srv, err := s.bridge(c)
	if err != nil {
		return s.fail(c, err)
	}
	return s.stream(c, sequenceSource{store: s.store, serverID: srv.ID})
}

func (s *server) streamIncidents(c fiber.Ctx) error {
	srv, err := s.bridge(c)
	if err != nil {
		return s.fail(c, err)
	}
	return s.stream(c, incidentSource{store: s.store, serverID: srv.ID})
}

// stream serves one SSE subscription backed by a feed publisher. The body
// writer runs after the handler returns, so the request context is gone by
// then; disconnects surface as flush errors, which stop the publisher.
func (s *server) stream(c fiber.Ctx, src feed.Source) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	interval := s.cfg.StreamInterval
	log := s.log
	return c.SendStreamWriter(func(w *bufio.Writer) {
		pub := feed.NewPublisher(src)
		pub.Interval = interval
		err := pub.Run(context.Background(), func(d feed.Delta) error {
			data, err := json.Marshal(d)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return err
			}
			return w.Flush()
		})
		if err != nil {
			log.Debug("stream closed", "error", err)
		}
	})
}
