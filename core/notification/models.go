package notification

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/cambria/academy/core/user"
)

type Type string

const (
	TypeAnnouncement        Type = "ANNOUNCEMENT"
	TypeAssignmentPosted    Type = "ASSIGNMENT_POSTED"
	TypeAssignmentSubmitted Type = "ASSIGNMENT_SUBMITTED"
	TypeMessage             Type = "MESSAGE"
	TypeHourLogged          Type = "HOUR_LOGGED"
	TypeHourApproved        Type = "HOUR_APPROVED"
	TypeHourRejected        Type = "HOUR_REJECTED"
)

// Metadata is the typed payload of a notification. Each Type accepts one variant.
type Metadata interface {
	kind() string
}

// ThreadRef points MESSAGE notifications at their conversation.
type ThreadRef struct {
	ThreadID string `json:"threadId,omitempty"`
}

// SubmissionRef points ASSIGNMENT_SUBMITTED notifications at a student's submission.
type SubmissionRef struct {
	AssignmentID string `json:"assignmentId,omitempty"`
	StudentID    string `json:"studentId,omitempty"`
}

// EntryRef points hour notifications at their entry.
type EntryRef struct {
	EntryID string `json:"entryId,omitempty"`
}

func (ThreadRef) kind() string     { return "thread" }
func (SubmissionRef) kind() string { return "submission" }
func (EntryRef) kind() string      { return "entry" }

var allowedMetadata = map[Type]string{
	TypeMessage:             ThreadRef{}.kind(),
	TypeAssignmentSubmitted: SubmissionRef{}.kind(),
	TypeHourLogged:          EntryRef{}.kind(),
	TypeHourApproved:        EntryRef{}.kind(),
	TypeHourRejected:        EntryRef{}.kind(),
}

// AllowsMetadata reports whether m may be attached to notifications of type t. nil is always allowed.
func (t Type) AllowsMetadata(m Metadata) bool {
	if m == nil {
		return true
	}
	return allowedMetadata[t] == m.kind()
}

type envelope struct {
	Kind string `json:"kind"`
	ThreadRef
	SubmissionRef
	EntryRef
}

// EncodeMetadata serializes m for storage. nil encodes to nil.
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	env := envelope{Kind: m.kind()}
	switch v := m.(type) {
	case ThreadRef:
		env.ThreadRef = v
	case SubmissionRef:
		env.SubmissionRef = v
	case EntryRef:
		env.EntryRef = v
	}
	return json.Marshal(env)
}

// DecodeMetadata is the inverse of EncodeMetadata.
func DecodeMetadata(data []byte) (Metadata, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "decoding notification metadata")
	}
	switch env.Kind {
	case ThreadRef{}.kind():
		return env.ThreadRef, nil
	case SubmissionRef{}.kind():
		return env.SubmissionRef, nil
	case EntryRef{}.kind():
		return env.EntryRef, nil
	default:
		return nil, errors.Errorf("unknown notification metadata kind %q", env.Kind)
	}
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link"`
	Metadata  Metadata  `json:"metadata"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Broadcast is one notification addressed to many users.
type Broadcast struct {
	UserIDs  []string
	Type     Type
	Title    string
	Body     string
	Link     string
	Metadata Metadata
}

type Summary struct {
	Total    int `json:"total"`
	Messages int `json:"messages"`
}

// MarkFilter selects the unread notifications to mark read. Set fields are ANDed.
type MarkFilter struct {
	UserID     string
	IDs        []string
	Type       Type
	Thread     *ThreadRef
	Submission *SubmissionRef
}

type AudienceKind string

const (
	AudienceAll        AudienceKind = "ALL"
	AudienceClassGroup AudienceKind = "CLASS_GROUP"
	AudienceRole       AudienceKind = "ROLE"
	AudienceIndividual AudienceKind = "INDIVIDUAL"
)

// Audience selects active users. An audience whose list is empty selects every active user.
type Audience struct {
	Kind        AudienceKind `json:"kind"`
	ClassGroups []string     `json:"class_groups"`
	Roles       []user.Role  `json:"roles"`
	UserIDs     []string     `json:"user_ids"`
}

func (a Audience) filter() user.QueryFilter {
	f := user.QueryFilter{ActiveOnly: true}
	switch a.Kind {
	case AudienceClassGroup:
		f.ClassGroups = a.ClassGroups
	case AudienceRole:
		f.Roles = a.Roles
	case AudienceIndividual:
		f.IDs = a.UserIDs
	}
	return f
}

type Announcement struct {
	ID       string
	Title    string
	Body     string
	Audience Audience
}

type TargetKind string

const (
	TargetAll        TargetKind = "ALL"
	TargetClassGroup TargetKind = "CLASS_GROUP"
	TargetStudents   TargetKind = "STUDENTS"
)

type Assignment struct {
	ID          string
	Title       string
	Description string
	DueAt       *time.Time
	Target      TargetKind
	TargetIDs   []string // class groups or student ids, by Target
}
