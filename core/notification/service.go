package notification

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/user"
)

var (
	ErrNotFound = errors.New("notification not found")

	NowFunc = time.Now // mockable
)

const (
	defaultListLimit   = 50
	defaultPreviewLen  = 240
	fallbackLink       = "/notifications"
	studentHoursLink   = "/student/hours"
	instructorHourLink = "/instructor/hours"
)

type (
	Repository interface {
		CreateNotifications(ctx context.Context, ns []Notification) error
		GetNotification(ctx context.Context, id string) (Notification, error)
		// QueryNotifications returns the latest notifications of a user, newest first.
		QueryNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
		CountUnread(ctx context.Context, userID string, types ...Type) (int, error)
		// MarkRead marks the unread notifications selected by filter and returns how many changed.
		MarkRead(ctx context.Context, filter MarkFilter) (int, error)
	}

	// Directory resolves audiences against the user set.
	Directory interface {
		Query(ctx context.Context, filter user.QueryFilter) ([]user.User, error)
	}

	Service struct {
		repo       Repository
		users      Directory
		mailer     core.EmailService
		conf       core.NotificationsConfig
		frontend   string
		logger     core.Logger
		listLimit  int
		previewLen int
	}
)

var _ hours.Notifier = (*Service)(nil)

// NewService returns the notification service. mailer may be nil; email copies are sent only
// when enabled in conf.
func NewService(repo Repository, users Directory, mailer core.EmailService, conf *core.Config, logger core.Logger) *Service {
	svc := &Service{
		repo:       repo,
		users:      users,
		mailer:     mailer,
		conf:       conf.Notifications,
		frontend:   conf.FrontendBaseURL,
		logger:     logger,
		listLimit:  conf.Notifications.ListLimit,
		previewLen: conf.Notifications.MessagePreviewLen,
	}
	if svc.listLimit <= 0 {
		svc.listLimit = defaultListLimit
	}
	if svc.previewLen <= 0 {
		svc.previewLen = defaultPreviewLen
	}
	return svc
}

// Notify writes one unread notification per distinct recipient and returns how many were written.
// An empty recipient set is a no-op.
func (svc *Service) Notify(ctx context.Context, b Broadcast) (int, error) {
	if !b.Type.AllowsMetadata(b.Metadata) {
		return 0, errors.Errorf("metadata %T not allowed on %s notifications", b.Metadata, b.Type)
	}
	ids := core.Dedupe(b.UserIDs)
	if len(ids) == 0 {
		return 0, nil
	}

	now := NowFunc().UTC()
	ns := make([]Notification, 0, len(ids))
	for _, id := range ids {
		ns = append(ns, Notification{
			UserID:    id,
			Type:      b.Type,
			Title:     b.Title,
			Body:      b.Body,
			Link:      b.Link,
			Metadata:  b.Metadata,
			CreatedAt: now,
		})
	}
	if err := svc.repo.CreateNotifications(ctx, ns); err != nil {
		return 0, errors.Wrap(err, "creating notifications")
	}

	if svc.conf.EmailCopies && svc.mailer != nil {
		svc.sendEmailCopies(ctx, ids, b)
	}
	return len(ns), nil
}

func (svc *Service) sendEmailCopies(ctx context.Context, ids []string, b Broadcast) {
	users, err := svc.users.Query(ctx, user.QueryFilter{IDs: ids, ActiveOnly: true})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("resolving notification email recipients: %v", err), err)
		return
	}
	msgs := make([]*core.EmailMessage, 0, len(users))
	for _, usr := range users {
		msg := &core.EmailMessage{
			To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject: b.Title,
			BodyStr: b.Body,
			Link:    b.Link,
		}
		msg.Render(svc.frontend)
		msgs = append(msgs, msg)
	}
	svc.mailer.SendMessages(msgs...)
}

func (svc *Service) notifyQuery(ctx context.Context, filter user.QueryFilter, exclude string, b Broadcast) (int, error) {
	users, err := svc.users.Query(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "resolving audience")
	}
	for _, usr := range users {
		if usr.ID != exclude {
			b.UserIDs = append(b.UserIDs, usr.ID)
		}
	}
	return svc.Notify(ctx, b)
}

// Announce notifies the active users selected by a.Audience.
// An empty selection list reaches every active user.
func (svc *Service) Announce(ctx context.Context, a Announcement) (int, error) {
	return svc.notifyQuery(ctx, a.Audience.filter(), "", Broadcast{
		Type:  TypeAnnouncement,
		Title: "Announcement: " + a.Title,
		Body:  a.Body,
		Link:  "/student",
	})
}

// AssignmentPosted notifies the targeted active students; an empty target list means all of them.
func (svc *Service) AssignmentPosted(ctx context.Context, a Assignment) (int, error) {
	filter := user.QueryFilter{Roles: []user.Role{user.RoleStudent}, ActiveOnly: true}
	switch a.Target {
	case TargetClassGroup:
		filter.ClassGroups = a.TargetIDs
	case TargetStudents:
		filter.IDs = a.TargetIDs
	}

	desc := strings.TrimRight(core.CleanString(a.Description), ".")
	if desc == "" {
		desc = "Details available inside"
	}
	due := "with no due date yet"
	if a.DueAt != nil {
		due = "due " + a.DueAt.UTC().Format("Jan 2, 2006 15:04 MST")
	}
	body := desc + ". " + due
	return svc.notifyQuery(ctx, filter, "", Broadcast{
		Type:  TypeAssignmentPosted,
		Title: "New assignment: " + a.Title,
		Body:  body,
		Link:  "/student/assignments/" + a.ID,
	})
}

// AssignmentSubmitted notifies the instructor owning the assignment.
func (svc *Service) AssignmentSubmitted(ctx context.Context, instructorID, assignmentID, assignmentTitle string, student user.User) (int, error) {
	return svc.Notify(ctx, Broadcast{
		UserIDs:  []string{instructorID},
		Type:     TypeAssignmentSubmitted,
		Title:    "Assignment submitted",
		Body:     student.DisplayName() + " submitted " + assignmentTitle,
		Link:     "/instructor/assignments/" + assignmentID,
		Metadata: SubmissionRef{AssignmentID: assignmentID, StudentID: student.ID},
	})
}

// MessageSent notifies the thread participants other than sender.
func (svc *Service) MessageSent(ctx context.Context, threadID string, sender user.User, participantIDs []string, body string) (int, error) {
	recipients := make([]string, 0, len(participantIDs))
	for _, id := range participantIDs {
		if id != sender.ID {
			recipients = append(recipients, id)
		}
	}
	return svc.Notify(ctx, Broadcast{
		UserIDs:  recipients,
		Type:     TypeMessage,
		Title:    "New message from " + sender.DisplayName(),
		Body:     Preview(body, svc.previewLen),
		Metadata: ThreadRef{ThreadID: threadID},
	})
}

// HoursLogged notifies every active staff member that a student logged an entry for review.
func (svc *Service) HoursLogged(ctx context.Context, student user.User, e hours.Entry) error {
	_, err := svc.notifyQuery(ctx, user.QueryFilter{Roles: user.StaffRoles, ActiveOnly: true}, "", Broadcast{
		Type:     TypeHourLogged,
		Title:    fmt.Sprintf("%s logged %d minutes", student.DisplayName(), e.Minutes),
		Body:     "Review the entry and approve or reject it.",
		Link:     instructorHourLink,
		Metadata: EntryRef{EntryID: e.ID},
	})
	return err
}

// HourReviewed notifies the student of the decision on their entry.
func (svc *Service) HourReviewed(ctx context.Context, reviewer user.User, e hours.Entry) error {
	typ, verb := TypeHourApproved, "approved"
	if e.Status == hours.StatusRejected {
		typ, verb = TypeHourRejected, "rejected"
	}
	_, err := svc.Notify(ctx, Broadcast{
		UserIDs:  []string{e.StudentID},
		Type:     typ,
		Title:    "Hours " + verb,
		Body:     fmt.Sprintf("%s %s %d minutes.", reviewer.DisplayName(), verb, e.Minutes),
		Link:     studentHoursLink,
		Metadata: EntryRef{EntryID: e.ID},
	})
	return err
}

func (svc *Service) List(ctx context.Context, userID string) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, userID, svc.listLimit)
}

func (svc *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	total, err := svc.repo.CountUnread(ctx, userID)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting unread notifications")
	}
	msgs, err := svc.repo.CountUnread(ctx, userID, TypeMessage)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting unread messages")
	}
	return Summary{Total: total, Messages: msgs}, nil
}

// MarkRead marks the given notifications of userID read; no ids marks all of them.
func (svc *Service) MarkRead(ctx context.Context, userID string, ids ...string) (int, error) {
	filter := MarkFilter{UserID: userID}
	if len(ids) > 0 {
		filter.IDs = core.Dedupe(ids)
		if len(filter.IDs) == 0 {
			return 0, nil
		}
	}
	return svc.repo.MarkRead(ctx, filter)
}

// MarkThreadRead marks the message notifications of a thread read for userID.
func (svc *Service) MarkThreadRead(ctx context.Context, userID, threadID string) (int, error) {
	if strings.TrimSpace(threadID) == "" {
		return 0, nil
	}
	return svc.repo.MarkRead(ctx, MarkFilter{
		UserID: userID,
		Type:   TypeMessage,
		Thread: &ThreadRef{ThreadID: threadID},
	})
}

// MarkSubmissionRead marks the submission notifications of (assignmentID, studentID) read for every recipient.
func (svc *Service) MarkSubmissionRead(ctx context.Context, assignmentID, studentID string) (int, error) {
	if strings.TrimSpace(assignmentID) == "" || strings.TrimSpace(studentID) == "" {
		return 0, nil
	}
	return svc.repo.MarkRead(ctx, MarkFilter{
		Type:       TypeAssignmentSubmitted,
		Submission: &SubmissionRef{AssignmentID: assignmentID, StudentID: studentID},
	})
}

// Open marks a notification of usr read and returns where the user should be sent.
func (svc *Service) Open(ctx context.Context, usr user.User, id string) (string, error) {
	n, err := svc.repo.GetNotification(ctx, id)
	if err != nil {
		return "", err
	}
	if n.UserID != usr.ID {
		return "", ErrNotFound
	}
	if !n.IsRead {
		if _, err := svc.repo.MarkRead(ctx, MarkFilter{UserID: usr.ID, IDs: []string{n.ID}}); err != nil {
			return "", errors.Wrap(err, "marking notification read")
		}
	}
	return Destination(n, usr.Role), nil
}

// Destination is the notification link, else its thread page for role, else the notifications page.
func Destination(n Notification, role user.Role) string {
	if n.Link != "" {
		return n.Link
	}
	if ref, ok := n.Metadata.(ThreadRef); ok && ref.ThreadID != "" {
		if role == user.RoleStudent {
			return "/student/messages/" + ref.ThreadID
		}
		return "/instructor/messages/" + ref.ThreadID
	}
	return fallbackLink
}

// Preview truncates s to max runes, marking the cut with an ellipsis.
func Preview(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}
