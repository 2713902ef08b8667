package items

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.yaml"))

	items, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, items)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns equal items.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "items.yaml")
	repo := NewFileRepository(file)

	want := []*domain.Item{
		{
			ID:              "rx-1",
			ReminderEnabled: true,
			Schedule:        "Morning, 9:30 PM",
			TabletNames:     []string{"Aspirin", "Vitamin D"},
			Instructions:    "After food.",
			Dosage:          "1 tablet",
			VoiceOptions:    &domain.VoiceOptions{Voice: "en-US-Standard-C", Rate: 1.1},
			ReminderMessage: "Pills!",
		},
		{
			ID:          "rx-2",
			Schedule:    "Night",
			TabletNames: []string{"Melatonin"},
		},
	}

	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	item, err := repo.Get(ctx, "rx-2")
	require.NoError(t, err)
	require.Equal(t, "Melatonin", item.Label())

	_, err = repo.Get(ctx, "rx-3")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_Load_ParsesHandWrittenFile reads the documented layout.
func TestFileRepository_Load_ParsesHandWrittenFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "items.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`items:
  - id: rx-1
    reminder_enabled: true
    schedule: "Evening"
    tablet_names: [Metformin]
    voice_options:
      volume: 0.6
`), 0o600))

	items, err := NewFileRepository(file).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].ReminderEnabled)
	require.InDelta(t, 0.6, items[0].VoiceOptions.Volume, 1e-9)
	require.Empty(t, items[0].TestSchedule)
}

// TestFileRepository_RejectsInvalidItems covers missing and duplicate ids.
func TestFileRepository_RejectsInvalidItems(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "items.yaml"))
	ctx := context.Background()

	err := repo.Save(ctx, []*domain.Item{{Schedule: "Morning"}})
	require.ErrorIs(t, err, ErrInvalidItems)

	err = repo.Save(ctx, []*domain.Item{{ID: "a"}, {ID: "a"}})
	require.ErrorIs(t, err, ErrInvalidItems)

	err = repo.Save(ctx, []*domain.Item{{ID: domain.TestOwnerID, ReminderEnabled: true, Schedule: "Morning"}})
	require.ErrorIs(t, err, ErrInvalidItems)
}

// TestFileRepository_LoadRejectsTestReminderID refuses a hand-written item
// that would collide with the test reminder.
func TestFileRepository_LoadRejectsTestReminderID(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "items.yaml")
	contents := "items:\n  - id: " + domain.TestOwnerID + "\n    reminder_enabled: true\n    schedule: Morning\n"
	require.NoError(t, os.WriteFile(file, []byte(contents), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.ErrorIs(t, err, ErrInvalidItems)
}

// TestFileRepository_Watch notices a rewrite of the items file.
func TestFileRepository_Watch(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "items.yaml")
	repo := NewFileRepository(file)
	require.NoError(t, repo.Save(context.Background(), []*domain.Item{{ID: "rx-1"}}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)

	go func() {
		done <- repo.Watch(ctx, func(context.Context) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register the directory.
	require.Eventually(t, func() bool {
		_ = repo.Save(context.Background(), []*domain.Item{{ID: "rx-1"}, {ID: "rx-2"}})

		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
