package mqtt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/med-reminder/internal/events"
)

// TestTopic joins the prefix and the event kind.
func TestTopic(t *testing.T) {
	t.Parallel()

	require.Equal(t, "medreminder/events/fired", Topic(DefaultTopicPrefix, events.KindFired))
	require.Equal(t, "home/pills/cleared", Topic("home/pills/", events.KindCleared))
}
