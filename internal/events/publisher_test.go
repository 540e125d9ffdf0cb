package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCompletedPayloadShape(t *testing.T) {
	ev := BuildCompleted{
		BuildID:     "b1",
		Outcome:     "success",
		Cards:       12,
		ArchivePath: "/builds/guru.zip",
		ContentHash: "abc123",
		Timestamp:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "b1", decoded["build_id"])
	assert.Equal(t, "success", decoded["outcome"])
	assert.Equal(t, float64(12), decoded["cards"])
	assert.Equal(t, "/builds/guru.zip", decoded["archive_path"])
}

func TestPublisherRequiresReachableServer(t *testing.T) {
	_, err := NewPublisher("nats://127.0.0.1:1", "gurupack.builds")
	require.Error(t, err)
}
