package models

import (
	"testing"

	"github.com/campuskit/coursezoom/pkg/internal/zoom"
	"github.com/stretchr/testify/assert"
)

func TestIsHost(t *testing.T) {
	meeting := ZoomMeeting{
		Remote: &zoom.Meeting{
			HostID: "U1",
			Settings: map[string]any{
				"alternative_hosts": "a@example.edu, b@example.edu",
			},
		},
	}

	assert.True(t, meeting.IsHost("whoever@example.edu", "U1"))
	assert.True(t, meeting.IsHost("a@example.edu", "U2"))
	assert.True(t, meeting.IsHost("b@example.edu", ""))
	assert.False(t, meeting.IsHost("c@example.edu", "U2"))
	assert.False(t, meeting.IsHost("", ""))
}

func TestIsHostRequiresHydration(t *testing.T) {
	meeting := ZoomMeeting{UserID: "local-1"}
	assert.False(t, meeting.IsHost("a@example.edu", "U1"))
}
