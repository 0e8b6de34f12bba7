package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/cambria/academy/apps/api/echo"
	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/campus"
	"github.com/cambria/academy/core/hours"
	"github.com/cambria/academy/core/notification"
	"github.com/cambria/academy/core/user"
	emailsvc "github.com/cambria/academy/services/email"
	logsvc "github.com/cambria/academy/services/logger"
	"github.com/cambria/academy/storage/database"
	sqlxrepos "github.com/cambria/academy/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DBExecutor) {
	db, err := database.SetUp(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	stdLogger := log.New(os.Stdout, "MAIL : ", log.LstdFlags)
	return emailsvc.NewEmailService(stdLogger, conf, logger)
}

func asStudents(svc *user.Service) hours.Students { return svc }
func asDirectory(svc *user.Service) notification.Directory { return svc }
func asNotifier(svc *notification.Service) hours.Notifier { return svc }

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(echoapi.NewValidation))

	must(c.Provide(sqlxrepos.NewUserRepository))
	must(c.Provide(sqlxrepos.NewLocationRepository))
	must(c.Provide(sqlxrepos.NewHourRepository))
	must(c.Provide(sqlxrepos.NewNotificationRepository))

	must(c.Provide(user.NewService))
	must(c.Provide(campus.NewService))
	must(c.Provide(notification.NewService))
	must(c.Provide(hours.NewService))
	must(c.Provide(asStudents))
	must(c.Provide(asDirectory))
	must(c.Provide(asNotifier))

	must(c.Provide(echoapi.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
