// Package profile composes directory attributes with complaint counts for a
// given identity. Summaries are recomputed per call; nothing is cached.
package profile

import (
	"context"
	"fmt"

	"complaintportal/internal/complaint"
	"complaintportal/internal/directory"
)

// DirectorySource resolves a subject to its directory record.
type DirectorySource interface {
	Lookup(ctx context.Context, subjectID string) (directory.Record, error)
}

// CountSource reduces complaint counts across all categories.
type CountSource interface {
	CountsFor(ctx context.Context, scholarNumber string) (complaint.Counts, error)
}

// Summary is the profile view returned to clients.
type Summary struct {
	directory.Record
	complaint.Counts
}

// Service aggregates profile data on demand.
type Service struct {
	dir    DirectorySource
	counts CountSource
}

// NewService creates an aggregator.
func NewService(dir DirectorySource, counts CountSource) *Service {
	return &Service{dir: dir, counts: counts}
}

// Get resolves the directory record and complaint counts for a subject.
// Directory errors pass through unchanged so callers can distinguish a
// missing user from an unreachable upstream.
func (s *Service) Get(ctx context.Context, subjectID string) (Summary, error) {
	record, err := s.dir.Lookup(ctx, subjectID)
	if err != nil {
		return Summary{}, err
	}
	counts, err := s.counts.CountsFor(ctx, subjectID)
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate counts: %w", err)
	}
	return Summary{Record: record, Counts: counts}, nil
}
