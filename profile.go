package vkauth

import (
	"encoding/json"
	"strings"
)

// Gender is the normalized gender of a VK user.
type Gender string

// VK encodes sex as 1 (female) and 2 (male); any other code maps to
// GenderUnknown.
const (
	GenderUnknown Gender = ""
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
)

// Photo is a single profile photo descriptor.
type Photo struct {
	Value string
}

// Email is a single email descriptor. VK does not expose email through
// the profile API; Emails on a Profile is populated only from the email
// claim returned alongside the access token.
type Email struct {
	Value string
}

// City is the user's city. VK's older API versions return a bare numeric
// city id while v5+ returns an {id, title} object; both shapes decode.
type City struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// UnmarshalJSON accepts both the numeric and the object city shape.
func (c *City) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if trimmed[0] != '{' {
		return json.Unmarshal(data, &c.ID)
	}
	type alias City
	return json.Unmarshal(data, (*alias)(c))
}

// Profile is the normalized representation of an authenticated VK user.
// It is immutable once returned; the raw response is retained for callers
// that need provider-specific detail beyond the normalized fields.
type Profile struct {
	// Provider is always ProviderName.
	Provider string

	// ID is VK's stable numeric user identifier.
	ID int64

	DisplayName string
	FirstName   string
	LastName    string

	// Nickname is VK's screen_name.
	Nickname string

	Gender Gender
	Photos []Photo
	City   *City

	// Emails is set only when the token exchange returned an email claim.
	Emails []Email

	// Raw is the verbatim users.get response body.
	Raw []byte

	// RawData is the parsed first element of the response list.
	RawData map[string]any
}

// userEnvelope is the users.get response shape:
// { response: [ {...} ], error?: { error_msg, error_code } }.
type userEnvelope struct {
	Response []json.RawMessage `json:"response"`
	Error    *apiErrorPayload  `json:"error"`
}

type apiErrorPayload struct {
	Message string `json:"error_msg"`
	Code    int    `json:"error_code"`
}

// vkUser covers the required profile fields. uid is the historical name;
// API v5+ renamed it to id, so both are decoded and uid wins when set.
type vkUser struct {
	UID        int64  `json:"uid"`
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ScreenName string `json:"screen_name"`
	Sex        int    `json:"sex"`
	City       *City  `json:"city"`
}

// newProfile maps one raw users.get record into a Profile.
func newProfile(body []byte, record json.RawMessage, photoField string) (*Profile, error) {
	var user vkUser
	if err := json.Unmarshal(record, &user); err != nil {
		return nil, err
	}

	var rawData map[string]any
	if err := json.Unmarshal(record, &rawData); err != nil {
		return nil, err
	}

	id := user.UID
	if id == 0 {
		id = user.ID
	}

	p := &Profile{
		Provider:    ProviderName,
		ID:          id,
		DisplayName: strings.TrimSpace(user.FirstName + " " + user.LastName),
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Nickname:    user.ScreenName,
		Gender:      mapGender(user.Sex),
		City:        user.City,
		Raw:         body,
		RawData:     rawData,
	}

	if photo, ok := rawData[photoField].(string); ok && photo != "" {
		p.Photos = []Photo{{Value: photo}}
	}

	return p, nil
}

func mapGender(sex int) Gender {
	switch sex {
	case 1:
		return GenderFemale
	case 2:
		return GenderMale
	default:
		return GenderUnknown
	}
}
