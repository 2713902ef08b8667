package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/med-reminder/internal/capability"
	"github.com/oshokin/med-reminder/internal/capability/capabilitytest"
)

// TestMulti_Permission combines member states.
func TestMulti_Permission(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	denied := capabilitytest.NewNotifier(capability.PermissionDenied, capability.PermissionDenied)
	undetermined := capabilitytest.NewNotifier(capability.PermissionUndetermined, capability.PermissionGranted)
	granted := capabilitytest.NewNotifier(capability.PermissionGranted, capability.PermissionGranted)

	require.Equal(t, capability.PermissionDenied, Multi{denied}.Permission(ctx))
	require.Equal(t, capability.PermissionUndetermined, Multi{denied, undetermined}.Permission(ctx))
	require.Equal(t, capability.PermissionGranted, Multi{undetermined, granted}.Permission(ctx))
	require.Equal(t, capability.PermissionDenied, Multi{}.Permission(ctx))
}

// TestMulti_Request asks only undetermined members.
func TestMulti_Request(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	denied := capabilitytest.NewNotifier(capability.PermissionDenied, capability.PermissionGranted)
	undetermined := capabilitytest.NewNotifier(capability.PermissionUndetermined, capability.PermissionGranted)

	state, err := Multi{denied, undetermined}.Request(ctx)
	require.NoError(t, err)
	require.Equal(t, capability.PermissionGranted, state)
	require.Zero(t, denied.Requests())
	require.Equal(t, 1, undetermined.Requests())
}

// TestMulti_Raise notifies granted members only.
func TestMulti_Raise(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	denied := capabilitytest.NewNotifier(capability.PermissionDenied, capability.PermissionDenied)
	granted := capabilitytest.NewNotifier(capability.PermissionGranted, capability.PermissionGranted)

	require.NoError(t, Multi{denied, granted}.Raise(ctx, "Medication Reminder", "Time to take: Aspirin"))
	require.Empty(t, denied.Raised())
	require.Equal(t, []capabilitytest.Notification{{
		Title: "Medication Reminder",
		Body:  "Time to take: Aspirin",
	}}, granted.Raised())

	require.ErrorIs(t, Multi{denied}.Raise(ctx, "t", "b"), capability.ErrUnavailable)
}

// TestNewTelegram_Validation rejects missing settings before contacting Telegram.
func TestNewTelegram_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewTelegram("", 42)
	require.ErrorIs(t, err, errTelegramToken)

	_, err = NewTelegram("123:abc", 0)
	require.ErrorIs(t, err, errTelegramChat)
}

// TestDesktop_StartsUndetermined does not touch the bus before Request.
func TestDesktop_StartsUndetermined(t *testing.T) {
	t.Parallel()

	d := NewDesktop("med-reminder", "")
	require.Equal(t, capability.PermissionUndetermined, d.Permission(context.Background()))
	require.ErrorIs(t, d.Raise(context.Background(), "t", "b"), capability.ErrUnavailable)
	require.NoError(t, d.Close())
}
