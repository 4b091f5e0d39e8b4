package zoom

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newClient(srv.URL, berlin(t)), srv
}

func TestApiToken(t *testing.T) {
	viper.Set("zoom.api_key", "key-123")
	viper.Set("zoom.api_secret", "secret-456")

	tks, err := apiToken()
	assert.NoError(t, err)

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tks, &claims, func(token *jwt.Token) (any, error) {
		return []byte("secret-456"), nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "key-123", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(60*time.Second), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGetMeetingNormalizesSingleTime(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meetings/86012345678", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
		w.Write([]byte(`{
			"id": 86012345678,
			"host_id": "U1",
			"topic": "Lecture",
			"start_time": "2024-04-10T08:00:00Z",
			"duration": 60,
			"settings": {"host_video": true}
		}`))
	}))

	meeting, err := client.GetMeeting("86012345678", RoomMeeting, false)
	assert.NoError(t, err)
	// 08:00 UTC is 10:00 in Berlin during summer time.
	assert.Equal(t, 10, meeting.StartsAt.Hour())
	assert.Equal(t, "Europe/Berlin", meeting.StartsAt.Location().String())
	assert.Equal(t, 60, meeting.Duration)
}

func TestGetMeetingPrefersFirstOccurrence(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": 1,
			"type": 8,
			"start_time": "2024-04-03T08:00:00Z",
			"duration": 30,
			"occurrences": [
				{"occurrence_id": "o1", "start_time": "2024-04-10T08:00:00Z", "duration": 60},
				{"occurrence_id": "o2", "start_time": "2024-04-17T08:00:00Z", "duration": 60}
			]
		}`))
	}))

	meeting, err := client.GetMeeting("1", RoomMeeting, false)
	assert.NoError(t, err)
	assert.Equal(t, 60, meeting.Duration)
	assert.Equal(t, time.Date(2024, 4, 10, 10, 0, 0, 0, berlin(t)), meeting.StartsAt)
}

func TestGetMeetingCacheRoundTrip(t *testing.T) {
	var hits int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"id": 1, "start_time": "2024-04-10T08:00:00Z", "duration": 60}`))
	}))

	_, err := client.GetMeeting("1", RoomMeeting, true)
	assert.NoError(t, err)
	_, err = client.GetMeeting("1", RoomMeeting, true)
	assert.NoError(t, err)
	assert.Equal(t, 1, hits)

	// Forcing freshness bypasses the cached copy.
	_, err = client.GetMeeting("1", RoomMeeting, false)
	assert.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestGetMeetingNotFoundInvalidatesCache(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	client.cache.Set("zoom-meeting-1", &Meeting{ID: 1}, meetingCacheTTL)

	_, err := client.GetMeeting("1", RoomMeeting, false)
	assert.ErrorIs(t, err, ErrNotFound)

	_, cached := client.cache.Get("zoom-meeting-1")
	assert.False(t, cached)
}

func TestErrorsAreNotConfusedWithNotFound(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.GetMeeting("1", RoomMeeting, false)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDeleteMeetingIsIdempotent(t *testing.T) {
	for _, room := range []RoomType{RoomMeeting, RoomWebinar} {
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/"+endpoint(room)+"/42", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}))

		assert.NoError(t, client.DeleteMeeting("42", room))
	}
}

func TestDeleteMeetingSurfacesRealErrors(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	assert.Error(t, client.DeleteMeeting("42", RoomMeeting))
}

func TestUpdateMeetingInvalidatesCacheRegardless(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	client.cache.Set("zoom-meeting-1", &Meeting{ID: 1}, meetingCacheTTL)

	err := client.UpdateMeeting("1", &MeetingRequest{Duration: 60}, RoomMeeting)
	assert.Error(t, err)

	_, cached := client.cache.Get("zoom-meeting-1")
	assert.False(t, cached)
}

func TestUpdateMeetingPassesNotFoundThrough(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	err := client.UpdateMeeting("1", &MeetingRequest{}, RoomMeeting)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateMeetingForcesEmbeddedPasswordsBestEffort(t *testing.T) {
	var patched bool
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/settings") {
			patched = true
			// A failing settings patch must not abort the creation.
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/host@example.edu/webinars", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 99, "start_time": "2024-04-10T08:00:00Z", "duration": 90}`))
	}))

	meeting, err := client.CreateMeeting("host@example.edu", &MeetingRequest{Topic: "t"}, RoomWebinar)
	assert.NoError(t, err)
	assert.True(t, patched)
	assert.Equal(t, int64(99), meeting.ID)
}

func TestGetUserCaching(t *testing.T) {
	var hits int
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"id": "U1", "email": "host@example.edu", "type": 2}`))
	}))

	_, err := client.GetUser("host@example.edu", false)
	assert.NoError(t, err)
	_, err = client.GetUser("host@example.edu", false)
	assert.NoError(t, err)
	assert.Equal(t, 1, hits)

	// The same account is also reachable via its provider id now.
	user, err := client.GetUser("U1", false)
	assert.NoError(t, err)
	assert.Equal(t, "host@example.edu", user.Email)
	assert.Equal(t, 1, hits)

	_, err = client.GetUser("host@example.edu", true)
	assert.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestUsersExist(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id": "U1", "email": "a@example.edu"}`))
	}))

	out := client.UsersExist([]string{"a@example.edu", "missing@example.edu"})
	assert.True(t, out["a@example.edu"])
	assert.False(t, out["missing@example.edu"])
}
