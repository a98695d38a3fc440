package redis

import (
	"context"

	"github.com/kailas-cloud/vecrud/internal/db"
)

// CreateIndex runs FT.CREATE for the collection's record index.
// An index that already exists yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, idx *db.VectorIndex) error {
	if err := idx.Validate(); err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(idx.Args()...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}
