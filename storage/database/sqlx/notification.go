package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/notification"
)

const notificationColumns = "id, user_id, type, title, body, link, metadata, is_read, created_at"

type notificationRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	Type      string      `db:"type"`
	Title     string      `db:"title"`
	Body      null.String `db:"body"`
	Link      null.String `db:"link"`
	Metadata  null.JSON   `db:"metadata"`
	IsRead    bool        `db:"is_read"`
	CreatedAt time.Time   `db:"created_at"`
}

func newNotificationRow(n notification.Notification) (notificationRow, error) {
	meta, err := notification.EncodeMetadata(n.Metadata)
	if err != nil {
		return notificationRow{}, err
	}
	return notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Body:      null.NewString(n.Body, n.Body != ""),
		Link:      null.NewString(n.Link, n.Link != ""),
		Metadata:  null.NewJSON(meta, meta != nil),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}, nil
}

func (r notificationRow) toNotification() (notification.Notification, error) {
	var meta notification.Metadata
	if r.Metadata.Valid {
		var err error
		if meta, err = notification.DecodeMetadata(r.Metadata.JSON); err != nil {
			return notification.Notification{}, err
		}
	}
	return notification.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Type:      notification.Type(r.Type),
		Title:     r.Title,
		Body:      r.Body.String,
		Link:      r.Link.String,
		Metadata:  meta,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

type notificationRepository struct {
	db core.DBExecutor
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db core.DBExecutor) notification.Repository {
	return &notificationRepository{db: db}
}

// CreateNotifications inserts all rows in a single statement.
func (repo *notificationRepository) CreateNotifications(ctx context.Context, ns []notification.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	rows := make([]notificationRow, 0, len(ns))
	for _, n := range ns {
		n.ID = uuid.New().String()
		row, err := newNotificationRow(n)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (:id, :user_id, :type, :title, :body, :link, :metadata, :is_read, :created_at)`,
		rows,
	)
	return errors.Wrap(err, "inserting notifications")
}

func (repo *notificationRepository) GetNotification(ctx context.Context, id string) (notification.Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return notification.Notification{}, notification.ErrNotFound
	}
	var row notificationRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+notificationColumns+" FROM notifications WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return notification.Notification{}, notification.ErrNotFound
	}
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "selecting notification")
	}
	return row.toNotification()
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, userID string, limit int) ([]notification.Notification, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []notification.Notification{}, nil
	}
	var rows []notificationRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting notifications")
	}
	ns := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		n, err := r.toNotification()
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return ns, nil
}

func (repo *notificationRepository) CountUnread(ctx context.Context, userID string, types ...notification.Type) (int, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, nil
	}
	q := "SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT is_read"
	args := []interface{}{userID}
	if len(types) > 0 {
		ts := make([]string, 0, len(types))
		for _, t := range types {
			ts = append(ts, string(t))
		}
		args = append(args, pq.Array(ts))
		q += " AND type = ANY($2)"
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	return count, nil
}

func (repo *notificationRepository) MarkRead(ctx context.Context, filter notification.MarkFilter) (int, error) {
	conds := []string{"NOT is_read"}
	var args []interface{}

	if filter.UserID != "" {
		if _, err := uuid.Parse(filter.UserID); err != nil {
			return 0, nil
		}
		args = append(args, filter.UserID)
		conds = append(conds, "user_id = "+placeholder(len(args)))
	}
	if len(filter.IDs) > 0 {
		ids := validUUIDs(filter.IDs)
		if len(ids) == 0 {
			return 0, nil
		}
		args = append(args, pq.Array(ids))
		conds = append(conds, "id = ANY("+placeholder(len(args))+"::uuid[])")
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conds = append(conds, "type = "+placeholder(len(args)))
	}
	for _, ref := range []notification.Metadata{threadRef(filter.Thread), submissionRef(filter.Submission)} {
		if ref == nil {
			continue
		}
		meta, err := notification.EncodeMetadata(ref)
		if err != nil {
			return 0, err
		}
		args = append(args, string(meta))
		conds = append(conds, "metadata @> "+placeholder(len(args))+"::jsonb")
	}

	res, err := repo.db.ExecContext(ctx, "UPDATE notifications SET is_read = true WHERE "+strings.Join(conds, " AND "), args...)
	if err != nil {
		return 0, errors.Wrap(err, "marking notifications read")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting notifications marked read")
	}
	return int(n), nil
}

func threadRef(ref *notification.ThreadRef) notification.Metadata {
	if ref == nil {
		return nil
	}
	return *ref
}

func submissionRef(ref *notification.SubmissionRef) notification.Metadata {
	if ref == nil {
		return nil
	}
	return *ref
}
