package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/notification"
	"github.com/cambria/academy/core/user"
)

type notificationResponse struct {
	ID       string            `json:"id"`
	UserID   string            `json:"user_id"`
	Type     notification.Type `json:"type"`
	Title    string            `json:"title"`
	Link     string            `json:"link"`
	Metadata map[string]string `json:"metadata"`
	IsRead   bool              `json:"is_read"`
}

func TestNotificationApi(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	sam := app.createUser(t, "Sam", "sam@cambria.edu", user.RoleStudent)
	ivy := app.createUser(t, "Ivy", "ivy@cambria.edu", user.RoleInstructor)
	samToken := getToken(t, app.conf, sam)
	ivyToken := getToken(t, app.conf, ivy)

	// Sam: two messages in thread t1, one in t2 and an hour review
	for _, body := range []string{"first", "second"} {
		_, err := app.notifSvc.MessageSent(ctx, "t1", ivy, []string{ivy.ID, sam.ID}, body)
		require.NoError(t, err)
	}
	_, err := app.notifSvc.MessageSent(ctx, "t2", ivy, []string{sam.ID}, "other thread")
	require.NoError(t, err)
	require.NoError(t, app.notifSvc.HourReviewed(ctx, ivy, hours.Entry{ID: "e1", StudentID: sam.ID, Minutes: 30, Status: hours.StatusApproved}))

	list := func(t *testing.T, token string) []notificationResponse {
		rec := app.do(httpTest{method: http.MethodGet, path: "/api/notifications", token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var ns []notificationResponse
		unmarchall(t, rec.Body.Bytes(), &ns)
		return ns
	}
	summary := func(t *testing.T, token string) notification.Summary {
		rec := app.do(httpTest{method: http.MethodGet, path: "/api/notifications/summary", token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var s notification.Summary
		unmarchall(t, rec.Body.Bytes(), &s)
		return s
	}

	t.Run("list", func(t *testing.T) {
		ns := list(t, samToken)
		require.Len(t, ns, 4)
		for _, n := range ns {
			assert.Equal(t, sam.ID, n.UserID)
			assert.False(t, n.IsRead)
		}
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)},
			app.do(httpTest{method: http.MethodGet, path: "/api/notifications", token: ivyToken}))
	})

	t.Run("summary", func(t *testing.T) {
		assert.Equal(t, notification.Summary{Total: 4, Messages: 3}, summary(t, samToken))
	})

	t.Run("thread read", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/api/notifications/threads/t1/read",
			token:    samToken,
			wantCode: http.StatusOK,
			wantData: []byte(`{"updated": 2}`),
		}
		checkCodeAndData(t, tt, app.do(tt))
		// already read
		tt.wantData = []byte(`{"updated": 0}`)
		checkCodeAndData(t, tt, app.do(tt))
		assert.Equal(t, notification.Summary{Total: 2, Messages: 1}, summary(t, samToken))
	})

	var review notificationResponse
	for _, n := range list(t, samToken) {
		if n.Type == notification.TypeHourApproved {
			review = n
		}
	}
	require.NotEmpty(t, review.ID)
	assert.Equal(t, map[string]string{"entryId": "e1"}, review.Metadata)

	tests := []httpTest{
		{
			name:     "open someone else's notification",
			method:   http.MethodGet,
			path:     "/api/notifications/" + review.ID + "/open",
			token:    ivyToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: notification.ErrNotFound.Error()}),
		},
		{
			name:     "open unknown notification",
			method:   http.MethodGet,
			path:     "/api/notifications/unknown/open",
			token:    samToken,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "mark unknown ids",
			method:   http.MethodPost,
			path:     "/api/notifications/read",
			body:     []byte(`{"ids": ["unknown"]}`),
			token:    samToken,
			wantCode: http.StatusOK,
			wantData: []byte(`{"updated": 0}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}

	t.Run("open redirects to the frontend", func(t *testing.T) {
		rec := app.do(httpTest{method: http.MethodGet, path: "/api/notifications/" + review.ID + "/open", token: samToken})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "http://localhost:3000/student/hours", rec.Header().Get("Location"))
		assert.Equal(t, notification.Summary{Total: 1, Messages: 1}, summary(t, samToken))
	})

	t.Run("mark all read", func(t *testing.T) {
		tt := httpTest{
			method:   http.MethodPost,
			path:     "/api/notifications/read",
			body:     []byte(`{}`),
			token:    samToken,
			wantCode: http.StatusOK,
			wantData: []byte(`{"updated": 1}`),
		}
		checkCodeAndData(t, tt, app.do(tt))
		assert.Equal(t, notification.Summary{}, summary(t, samToken))
	})
}

func TestNotificationApi_openMessage(t *testing.T) {
	app := setup(t)
	ctx := context.Background()

	sam := app.createUser(t, "Sam", "sam@cambria.edu", user.RoleStudent)
	ivy := app.createUser(t, "Ivy", "ivy@cambria.edu", user.RoleInstructor)

	_, err := app.notifSvc.MessageSent(ctx, "t9", sam, []string{sam.ID, ivy.ID}, "question")
	require.NoError(t, err)
	ns, err := app.notifSvc.List(ctx, ivy.ID)
	require.NoError(t, err)
	require.Len(t, ns, 1)

	rec := app.do(httpTest{method: http.MethodGet, path: "/api/notifications/" + ns[0].ID + "/open", token: getToken(t, app.conf, ivy)})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "http://localhost:3000/instructor/messages/t9", rec.Header().Get("Location"))
}
