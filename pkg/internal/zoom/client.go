package zoom

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	// ZoomTimezone is the timezone all provider timestamps arrive in.
	ZoomTimezone = "UTC"

	userCacheTTL    = 24 * time.Hour
	meetingCacheTTL = 3 * time.Hour
)

// ErrNotFound is returned when the provider answers 404 for a lookup.
// Unlike other errors it is actionable: the remote resource is gone for
// good and callers may clean up their local reference.
var ErrNotFound = errors.New("not found in zoom")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Client struct {
	http    *http.Client
	cache   *gocache.Cache
	baseURL string
	tz      *time.Location
}

var C *Client

func Setup() error {
	viper.SetDefault("zoom.api_url", "https://api.zoom.us/v2")
	viper.SetDefault("zoom.timezone", "Europe/Berlin")
	viper.SetDefault("zoom.meeting_capacity", 300)

	tz, err := time.LoadLocation(viper.GetString("zoom.timezone"))
	if err != nil {
		return fmt.Errorf("unable to load local timezone: %v", err)
	}

	C = newClient(viper.GetString("zoom.api_url"), tz)
	return nil
}

func newClient(baseURL string, tz *time.Location) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		cache:   gocache.New(meetingCacheTTL, 30*time.Minute),
		baseURL: baseURL,
		tz:      tz,
	}
}

// LocalTZ exposes the configured local timezone used for all schedule math.
func (c *Client) LocalTZ() *time.Location {
	return c.tz
}

// MeetingCapacity is the provider-imposed attendee ceiling of regular
// meeting rooms; above it a webinar is required.
func MeetingCapacity() int {
	if n := viper.GetInt("zoom.meeting_capacity"); n > 0 {
		return n
	}
	return 300
}

// call performs one authenticated API request and classifies the outcome.
// Every transport failure and any status outside 2xx/404 comes back as an
// opaque error; 404 maps to ErrNotFound.
func (c *Client) call(method, path string, query url.Values, body any, out any) error {
	token, err := apiToken()
	if err != nil {
		return err
	}

	uri := fmt.Sprintf("%s/%s", c.baseURL, path)
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, uri, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("zoom api is unreachable: %v", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode < 200 || res.StatusCode > 299:
		return fmt.Errorf("zoom api responded with status %d", res.StatusCode)
	}

	if out != nil && res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("unable to decode zoom response: %v", err)
		}
	}
	return nil
}

// GetUser looks up one provider account by email address or provider id.
// Successful lookups are kept for a day unless the caller wants it fresh.
func (c *Client) GetUser(identity string, fresh bool) (*User, error) {
	key := "zoom-user-" + identity
	if !fresh {
		if cached, ok := c.cache.Get(key); ok {
			return cached.(*User), nil
		}
	}

	var user User
	if err := c.call(http.MethodGet, "users/"+url.PathEscape(identity), nil, nil, &user); err != nil {
		return nil, err
	}

	c.cache.Set(key, &user, userCacheTTL)
	c.cache.Set("zoom-user-"+user.ID, &user, userCacheTTL)
	return &user, nil
}

// UsersExist checks which of the given email addresses have a provider
// account. Lookup failures of any kind count as not available.
func (c *Client) UsersExist(emails []string) map[string]bool {
	out := make(map[string]bool, len(emails))
	for _, email := range emails {
		_, err := c.GetUser(email, false)
		out[email] = err == nil
	}
	return out
}

// GetUserSettings fetches the account-level feature flags, including
// webinar entitlement and its attendee ceiling.
func (c *Client) GetUserSettings(identity string) (*UserSettings, error) {
	var settings UserSettings
	if err := c.call(http.MethodGet, "users/"+url.PathEscape(identity)+"/settings", nil, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// EnableEmbeddedPasswords turns on "embed password in join link" for the
// given account so generated join links work without typing the password.
func (c *Client) EnableEmbeddedPasswords(identity string) error {
	body := map[string]any{
		"schedule_meeting": map[string]any{"embed_password_in_join_link": true},
	}
	return c.call(http.MethodPatch, "users/"+url.PathEscape(identity)+"/settings", nil, body, nil)
}

// GetMeeting fetches a meeting or webinar and normalizes it: recurring
// rooms collapse to their first occurrence and the start time is converted
// into the local timezone. A 404 also drops any stale cache entry.
func (c *Client) GetMeeting(id string, room RoomType, useCache bool) (*Meeting, error) {
	key := "zoom-meeting-" + id
	if useCache {
		if cached, ok := c.cache.Get(key); ok {
			return cached.(*Meeting), nil
		}
	}

	var meeting Meeting
	if err := c.call(http.MethodGet, endpoint(room)+"/"+url.PathEscape(id), nil, nil, &meeting); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.cache.Delete(key)
		}
		return nil, err
	}

	if err := c.normalize(&meeting); err != nil {
		return nil, err
	}
	c.cache.Set(key, &meeting, meetingCacheTTL)
	return &meeting, nil
}

// CreateMeeting creates a meeting or webinar owned by the given account.
// Embedding passwords in join links is enforced beforehand, but only as a
// best effort; creation proceeds even if that setting cannot be written.
func (c *Client) CreateMeeting(owner string, req *MeetingRequest, room RoomType) (*Meeting, error) {
	if err := c.EnableEmbeddedPasswords(owner); err != nil {
		log.Warn().Err(err).Str("owner", owner).Msg("Unable to enable embedded meeting passwords...")
	}

	var meeting Meeting
	path := fmt.Sprintf("users/%s/%s", url.PathEscape(owner), endpoint(room))
	if err := c.call(http.MethodPost, path, nil, req, &meeting); err != nil {
		return nil, err
	}

	if err := c.normalize(&meeting); err != nil {
		return nil, err
	}
	c.cache.Set(fmt.Sprintf("zoom-meeting-%d", meeting.ID), &meeting, meetingCacheTTL)
	return &meeting, nil
}

// UpdateMeeting patches a meeting or webinar. The cached copy is stale the
// moment an update is attempted, so it is dropped regardless of outcome.
func (c *Client) UpdateMeeting(id string, req *MeetingRequest, room RoomType) error {
	c.cache.Delete("zoom-meeting-" + id)
	return c.call(http.MethodPatch, endpoint(room)+"/"+url.PathEscape(id), nil, req, nil)
}

// DeleteMeeting removes a meeting or webinar. Deletion is idempotent: a
// room that is already gone remotely counts as successfully deleted.
func (c *Client) DeleteMeeting(id string, room RoomType) error {
	c.cache.Delete("zoom-meeting-" + id)
	err := c.call(http.MethodDelete, endpoint(room)+"/"+url.PathEscape(id), nil, nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// normalize folds the occurrences-vs-single-time shape into one start and
// duration pair and moves the timestamp into the local timezone.
func (c *Client) normalize(meeting *Meeting) error {
	raw := meeting.StartTime
	duration := meeting.Duration
	if len(meeting.Occurrences) > 0 {
		raw = meeting.Occurrences[0].StartTime
		duration = meeting.Occurrences[0].Duration
	}

	if len(raw) > 0 {
		startsAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("unable to parse meeting start time %q: %v", raw, err)
		}
		meeting.StartsAt = startsAt.In(c.tz)
	}
	meeting.Duration = duration

	if meeting.Settings == nil {
		meeting.Settings = make(map[string]any)
	}
	return nil
}
