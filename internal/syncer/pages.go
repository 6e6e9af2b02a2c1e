package syncer

import (
	"context"

	"github.com/wnt/binwatch/internal/binance"
	"github.com/wnt/binwatch/internal/models"
)

// syncPages walks one page-cursor stream. The start time stays fixed while
// the page number advances; an empty page signals exhaustion. A response
// missing its envelope decodes to an empty page and terminates the walk the
// same way.
//
// convert maps a raw record to its row and reports whether it should be
// kept. Pagination always follows the raw page count, not the kept count,
// so records rejected by a status filter still advance the walk.
func syncPages[T any, R any](
	s *Syncer,
	ctx context.Context,
	op string,
	stream models.StreamKind,
	startTime int64,
	fetch func(ctx context.Context, q binance.PageQuery) ([]T, error),
	convert func(T) (R, bool),
) error {
	current := 1
	for {
		q := binance.PageQuery{
			StartTime: startTime,
			Page:      current,
			Size:      pageSize,
		}
		var page []T
		err := s.guard.Do(ctx, op, func() error {
			var err error
			page, err = fetch(ctx, q)
			return err
		})
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}

		rows := make([]R, 0, len(page))
		for _, record := range page {
			if row, ok := convert(record); ok {
				rows = append(rows, row)
			}
		}
		if err := persist(s, stream, rows); err != nil {
			return err
		}
		current++
	}
}

// syncArchivedPages walks one page-cursor stream through its two phases.
// The exchange partitions history older than about three months into an
// archive that must be requested with a distinct flag, so a stream far
// behind is walked archived-first. Once the archived partition is drained
// the cursor is recomputed from the rows just committed and the walk
// restarts at page one against the live partition.
func syncArchivedPages[T any, R any](
	s *Syncer,
	ctx context.Context,
	op string,
	stream models.StreamKind,
	cursor func() int64,
	fetch func(ctx context.Context, q binance.PageQuery) ([]T, error),
	convert func(T) (R, bool),
) error {
	latest := cursor()
	archived := s.nowMillis()-latest > archiveThresholdMillis
	current := 1

	for {
		q := binance.PageQuery{
			StartTime: latest + marginOffsetMillis,
			Page:      current,
			Size:      pageSize,
			Archived:  archived,
		}
		var page []T
		err := s.guard.Do(ctx, op, func() error {
			var err error
			page, err = fetch(ctx, q)
			return err
		})
		if err != nil {
			return err
		}

		switch {
		case len(page) > 0:
			rows := make([]R, 0, len(page))
			for _, record := range page {
				if row, ok := convert(record); ok {
					rows = append(rows, row)
				}
			}
			if err := persist(s, stream, rows); err != nil {
				return err
			}
			current++
		case archived:
			// Archive drained, switch to live history. The cursor moved if
			// any archived page was committed, so recompute it.
			archived = false
			current = 1
			latest = cursor()
		default:
			return nil
		}
	}
}
