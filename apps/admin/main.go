// Command admin runs operator tasks against the academy database.
package main

import (
	"log"
	"os"

	echoapi "github.com/cambria/academy/apps/api/echo"
	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/campus"
	"github.com/cambria/academy/core/user"
	logsvc "github.com/cambria/academy/services/logger"
	"github.com/cambria/academy/storage/database"
	sqlxrepos "github.com/cambria/academy/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()
	appLogger := logsvc.NewRollbarLogger(logger, conf)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	validate, _ := echoapi.NewValidation()

	// start CLI
	cli := commandLine{
		conf:      conf,
		db:        db,
		usrSvc:    user.NewService(sqlxrepos.NewUserRepository(db), appLogger),
		campusSvc: campus.NewService(sqlxrepos.NewLocationRepository(db), appLogger),
		validate:  validate,
		out:       os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
