package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cambria/academy/core/user"
)

// addUser updates or creates the user owning email.
func (cli *commandLine) addUser(email, name, role, classGroup string, isActive bool) error {
	uu := user.UpsertUser{
		Name:       name,
		Email:      email,
		Role:       user.Role(strings.ToUpper(strings.TrimSpace(role))),
		ClassGroup: classGroup,
		IsActive:   &isActive,
	}
	if err := uu.Validate(cli.validate); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Save(context.Background(), uu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "saved %s (%s, %s, active: %t)\n", usr.Email, usr.ID, usr.Role, usr.IsActive)
	return nil
}
