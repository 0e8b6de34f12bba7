package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	echoapi "github.com/cambria/academy/apps/api/echo"
	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/campus"
	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/notification"
	"github.com/cambria/academy/core/user"
	"github.com/cambria/academy/services/email"
	"github.com/cambria/academy/storage/database/inmem"
	"github.com/cambria/academy/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

type testApp struct {
	conf     *core.Config
	server   *echoapi.Server
	logger   *testutil.Logger
	usrRepo  user.Repository
	hourRepo hours.Repository
	notifSvc *notification.Service
	hoursSvc *hours.Service
}

func setup(t *testing.T) *testApp {
	conf := core.NewTestConfig()
	db := inmemdb.Open()
	logger := &testutil.Logger{}
	validate, translator := echoapi.NewValidation()

	usrRepo := inmemdb.NewUserRepository(db)
	hourRepo := inmemdb.NewHourRepository(db)
	usrSvc := user.NewService(usrRepo, logger)
	notifSvc := notification.NewService(inmemdb.NewNotificationRepository(db), usrSvc, emailsvc.NewConsoleServiceMock(conf), conf, logger)
	hoursSvc := hours.NewService(hourRepo, usrSvc, notifSvc, logger)

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:            conf,
		Logger:          logger,
		UserSvc:         usrSvc,
		CampusSvc:       campus.NewService(inmemdb.NewLocationRepository(db), logger),
		HoursSvc:        hoursSvc,
		NotificationSvc: notifSvc,
		Validate:        validate,
		Translator:      translator,
	})
	return &testApp{
		conf:     conf,
		server:   server,
		logger:   logger,
		usrRepo:  usrRepo,
		hourRepo: hourRepo,
		notifSvc: notifSvc,
		hoursSvc: hoursSvc,
	}
}

func (app *testApp) createUser(t *testing.T, name, email string, role user.Role) user.User {
	return testutil.CreateUser(t, app.usrRepo, name, email, role, "", true)
}

func (app *testApp) do(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	app.server.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := echoapi.GenerateToken(echoapi.NewClaims(usr.Email, usr.Name, conf), conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func unmarchall(t *testing.T, data []byte, obj interface{}) {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarchall(%s): %v", data, err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
