package syncer

import (
	"context"
	"errors"

	"NewsDesk/internal/ports"
)

// Multi fans a commit out to several syncers, reporting every failure.
type Multi []ports.Syncer

var _ ports.Syncer = Multi(nil)

// Commit calls every syncer in order, even after one fails.
func (m Multi) Commit(ctx context.Context, paths []string, message string) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		errs = append(errs, s.Commit(ctx, paths, message))
	}
	return errors.Join(errs...)
}
