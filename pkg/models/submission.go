package models

import "time"

// Submission is a data payload recorded against one form. The form keeps no
// back-reference to its submissions.
type Submission struct {
	ID           string         `json:"_id,omitempty"`
	Form         string         `json:"form,omitempty"`
	Owner        string         `json:"owner,omitempty"`
	Project      string         `json:"project,omitempty"`
	Data         map[string]any `json:"data"`
	Metadata     *Metadata      `json:"metadata,omitempty"`
	Access       []any          `json:"access,omitempty"`
	Roles        []string       `json:"roles,omitempty"`
	ExternalIDs  []any          `json:"externalIds,omitempty"`
	State        string         `json:"state,omitempty"`
	FormRevision string         `json:"_fvid,omitempty"`
	Created      string         `json:"created,omitempty"`
	Modified     string         `json:"modified,omitempty"`

	Extra Extra `json:"-"`
}

// Metadata is the request snapshot the store records with a submission.
type Metadata struct {
	Headers  map[string]string `json:"headers,omitempty"`
	Timezone string            `json:"timezone,omitempty"`
	Offset   *int              `json:"offset,omitempty"`
	Referrer string            `json:"referrer,omitempty"`
	Browser  string            `json:"browserName,omitempty"`
	Agent    string            `json:"userAgent,omitempty"`
	Extra    Extra             `json:"-"`
}

type (
	submissionAlias Submission
	metadataAlias   Metadata
)

func (s Submission) MarshalJSON() ([]byte, error) {
	if s.Data == nil {
		s.Data = map[string]any{}
	}
	return marshalWithExtra(submissionAlias(s), s.Extra)
}

func (s *Submission) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*submissionAlias)(s), &s.Extra)
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(metadataAlias(m), m.Extra)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	return unmarshalWithExtra(data, (*metadataAlias)(m), &m.Extra)
}

// CreatedAt parses the created timestamp.
func (s *Submission) CreatedAt() (time.Time, error) {
	return parseTimestamp(s.Created)
}

// ModifiedAt parses the modified timestamp.
func (s *Submission) ModifiedAt() (time.Time, error) {
	return parseTimestamp(s.Modified)
}

// User is a submission against a user resource. Roles carries the role ids
// used for permission checks.
type User = Submission

// IsAnonymous reports whether u represents no authenticated user.
func IsAnonymous(u *User) bool {
	return u == nil || u.ID == ""
}
