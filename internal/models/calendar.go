package models

// AccessRole is the caller's permission level on a calendar.
type AccessRole string

const (
	AccessOwner          AccessRole = "owner"
	AccessWriter         AccessRole = "writer"
	AccessReader         AccessRole = "reader"
	AccessFreeBusyReader AccessRole = "freeBusyReader"
)

// CalendarDescriptor describes a calendar the backend has synced for the user.
// The client only ever holds a read-only copy.
type CalendarDescriptor struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	IsPrimary       bool              `json:"isPrimary"`
	AccessRole      AccessRole        `json:"accessRole"`
	IsActive        bool              `json:"isActive"`
	IsWritable      bool              `json:"isWritable"`
	BackgroundColor string            `json:"backgroundColor,omitempty"`
	ForegroundColor string            `json:"foregroundColor,omitempty"`
	TimeZone        string            `json:"timeZone,omitempty"`
	Summary         string            `json:"summary,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}
