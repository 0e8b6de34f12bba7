package main

import (
	"fmt"

	echoapi "github.com/cambria/academy/apps/api/echo"
	"github.com/cambria/academy/core"
)

// token prints a bearer token for email signed with the API secret, standing in for the identity provider.
func (cli *commandLine) token(email, name string) error {
	email = core.CleanString(email, true /* lower */)
	ss, err := echoapi.GenerateToken(echoapi.NewClaims(email, name, cli.conf), cli.conf.SecretKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, ss)
	return nil
}
