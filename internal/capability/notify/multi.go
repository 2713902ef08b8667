package notify

import (
	"context"
	"errors"

	"github.com/oshokin/med-reminder/internal/capability"
)

// Multi fans notifications out to every member notifier.
type Multi []capability.Notifier

// Permission is granted when any member is granted, undetermined when any
// member is undetermined, and denied otherwise.
func (m Multi) Permission(ctx context.Context) capability.Permission {
	result := capability.PermissionDenied

	for _, n := range m {
		switch n.Permission(ctx) {
		case capability.PermissionGranted:
			return capability.PermissionGranted
		case capability.PermissionUndetermined:
			result = capability.PermissionUndetermined
		case capability.PermissionDenied:
		}
	}

	return result
}

// Request asks every undetermined member and returns the combined state.
func (m Multi) Request(ctx context.Context) (capability.Permission, error) {
	var errs []error

	for _, n := range m {
		if n.Permission(ctx) != capability.PermissionUndetermined {
			continue
		}

		if _, err := n.Request(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return m.Permission(ctx), errors.Join(errs...)
}

// Raise notifies every granted member.
func (m Multi) Raise(ctx context.Context, title, body string) error {
	var (
		errs      []error
		delivered bool
	)

	for _, n := range m {
		if n.Permission(ctx) != capability.PermissionGranted {
			continue
		}

		if err := n.Raise(ctx, title, body); err != nil {
			errs = append(errs, err)

			continue
		}

		delivered = true
	}

	if !delivered && len(errs) == 0 {
		return capability.ErrUnavailable
	}

	return errors.Join(errs...)
}
