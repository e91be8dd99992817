// Example: submit a detection sequence graph, then resubmit it with a
// rewired vertex to watch the reconciler keep, create and prune edges.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camguard/camguard"
	"github.com/camguard/camguard/postgres"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	var store camguard.Store = postgres.New(pool)

	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	company, err := store.CreateCompany(ctx, camguard.CompanyInput{
		Name: str("Acme Logistics"),
	})
	if err != nil {
		log.Fatalf("create company: %v", err)
	}

	// ── Submit a three-stage graph: person → helmet-missing → alert ───
	submission := camguard.SequenceInput{
		Name:      "ppe-check",
		CompanyID: company.ID,
		Vertexes: []camguard.VertexInput{
			{UniqueID: "person", Name: str("person detector"), Types: []int64{1}},
			{UniqueID: "helmet", Name: str("helmet check"), Types: []int64{7}, Source: []string{"person"}},
			{UniqueID: "alert", Name: str("alert"), Types: []int64{9}, Source: []string{"helmet"}},
		},
	}

	created, err := store.CreateSequence(ctx, submission)
	if err != nil {
		log.Fatalf("create sequence: %v", err)
	}
	fmt.Println("sequence created:")
	printJSON(created)

	// ── Resubmit with the alert stage rewired straight to person ──────
	update := camguard.SequenceInput{
		Name:      "ppe-check",
		CompanyID: company.ID,
		Vertexes: []camguard.VertexInput{
			{ID: &created.Vertexes[0].ID, UniqueID: "person"},
			{ID: &created.Vertexes[1].ID, UniqueID: "helmet", Source: []string{"person"}},
			{ID: &created.Vertexes[2].ID, UniqueID: "alert", Source: []string{"person"}},
		},
	}

	updated, err := store.UpdateSequence(ctx, created.ID, update)
	if err != nil {
		log.Fatalf("update sequence: %v", err)
	}
	fmt.Println("\nsequence reconciled (helmet→alert pruned, person→alert created):")
	printJSON(updated)
}

func str(s string) *string { return &s }

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
