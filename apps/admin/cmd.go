package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/cambria/academy/core"
	"github.com/cambria/academy/core/campus"
	"github.com/cambria/academy/core/user"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	db        *sqlx.DB
	usrSvc    *user.Service
	campusSvc *campus.Service
	validate  *validator.Validate
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -role ROLE [-name NAME] [-class GROUP] [-inactive] - create or update a user")
	fmt.Fprintln(cli.out, "  location [-lat LAT] [-lng LNG] [-radius METERS] [-label LABEL] [-enable|-disable] - show or update the campus location")
	fmt.Fprintln(cli.out, "  token -email EMAIL [-name NAME] - print a development bearer token")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		fs := cli.newFlagSet("adduser")
		email := fs.String("email", "", "The user's email, as known to the identity provider.")
		name := fs.String("name", "", "The user's display name.")
		role := fs.String("role", string(user.RoleStudent), "One of STUDENT, INSTRUCTOR, HEAD_INSTRUCTOR, ADMIN.")
		class := fs.String("class", "", "The student's class group.")
		inactive := fs.Bool("inactive", false, "Deactivate the user.")
		if err := parse(fs, args[2:]); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		return cli.addUser(*email, *name, *role, *class, !*inactive)

	case "location":
		fs := cli.newFlagSet("location")
		lat := fs.Float64("lat", 0, "Latitude of the campus center.")
		lng := fs.Float64("lng", 0, "Longitude of the campus center.")
		radius := fs.Float64("radius", 0, "Allowed radius in meters.")
		label := fs.String("label", "", "Name of the location.")
		enable := fs.Bool("enable", false, "Enforce the location on clock in/out.")
		disable := fs.Bool("disable", false, "Stop enforcing the location.")
		if err := parse(fs, args[2:]); err != nil {
			return err
		}

		var upd campus.LocationUpdate
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "lat":
				upd.Lat = lat
			case "lng":
				upd.Lng = lng
			case "radius":
				upd.RadiusMeters = radius
			case "label":
				upd.Label = label
			}
		})
		switch {
		case *enable && *disable:
			return errors.New("-enable and -disable are exclusive")
		case *enable:
			upd.IsEnabled = enable
		case *disable:
			off := false
			upd.IsEnabled = &off
		}
		return cli.location(upd)

	case "token":
		fs := cli.newFlagSet("token")
		email := fs.String("email", "", "The email the token identifies.")
		name := fs.String("name", "", "The name claim.")
		if err := parse(fs, args[2:]); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		return cli.token(*email, *name)

	default:
		cli.printUsage()
		return errHelp
	}
}
