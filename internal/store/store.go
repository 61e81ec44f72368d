// Package store is the query layer over the shared Supabase store.
//
// Source entities (landlords, properties, listings, payments, events) are
// read-only collaborators written by external systems. Derived entities
// (risk scores, rankings, reports, job history, audit logs) are owned by
// this service and freely overwritten on each recomputation — every write
// is an idempotent upsert by natural key.
package store

import (
	"errors"
	"fmt"

	supabase "github.com/supabase-community/supabase-go"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Supabase implements the query layer against a Supabase project.
type Supabase struct {
	client *supabase.Client
}

// New creates the Supabase-backed store.
func New(url, key string) (*Supabase, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("store URL and credential are required")
	}
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Supabase{client: client}, nil
}
