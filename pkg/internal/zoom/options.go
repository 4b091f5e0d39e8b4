package zoom

// RoomOption is one toggle a lecturer can set for a room. The legal set
// depends on the room type; keys outside the schema are never sent.
type RoomOption struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

var meetingOptions = []RoomOption{
	{Name: "host_video", Label: "Start with host video on", Default: true},
	{Name: "participant_video", Label: "Start with participant video on", Default: false},
	{Name: "join_before_host", Label: "Allow joining before the host", Default: false},
	{Name: "mute_upon_entry", Label: "Mute participants upon entry", Default: true},
	{Name: "waiting_room", Label: "Enable waiting room", Default: false},
}

// Webinars know fewer toggles; attendee-side options like joining early or
// entry muting do not exist there.
var webinarOptions = []RoomOption{
	{Name: "host_video", Label: "Start with host video on", Default: true},
	{Name: "panelists_video", Label: "Start with panelist video on", Default: false},
	{Name: "practice_session", Label: "Start with a practice session", Default: false},
	{Name: "hd_video", Label: "Prefer HD video", Default: false},
}

// RoomOptions returns the ordered option schema for the given room type.
func RoomOptions(room RoomType) []RoomOption {
	if room == RoomWebinar {
		return webinarOptions
	}
	return meetingOptions
}

// reservedOptions is the authentication option family. It is owned by the
// account administrators and must never be written back by this service.
var reservedOptions = []string{
	"authentication_option",
	"authentication_domains",
	"authentication_name",
}

// FilterOptions reduces arbitrary toggle input to the closed schema of the
// room type. Unknown keys are dropped, known but unset keys come out false.
func FilterOptions(toggles map[string]bool, room RoomType) map[string]any {
	out := make(map[string]any)
	for _, option := range RoomOptions(room) {
		out[option.Name] = toggles[option.Name]
	}
	return out
}
