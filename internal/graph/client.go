// Package graph wraps the Neo4j database that stores accounts as (:User)
// nodes linked by [:REFERRED] relationships.
package graph

import (
	"context"
	"errors"
)

// Client defines the minimal contract required by the repositories to interact
// with the underlying graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// First returns the first record, or ErrNoRecords.
func (r Result) First() (Record, error) {
	if len(r.Records) == 0 {
		return nil, ErrNoRecords
	}
	return r.Records[0], nil
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// String returns the value under key as a string, or "" when absent.
func (r Record) String(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the numeric value under key, accepting any integer or float encoding.
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Int returns the integer value under key.
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

var (
	// ErrMissingURI indicates the graph URI is not provided.
	ErrMissingURI = errors.New("graph URI is required")
	// ErrNoRecords indicates a query that should match returned nothing.
	ErrNoRecords = errors.New("graph query returned no records")
)
