package main

import (
	"context"
	"fmt"

	"github.com/cambria/academy/core/campus"
)

// location applies upd to the campus location, then prints it. An empty update only prints.
func (cli *commandLine) location(upd campus.LocationUpdate) error {
	ctx := context.Background()

	loc := cli.campusSvc.Get(ctx)
	if upd != (campus.LocationUpdate{}) {
		var err error
		if loc, err = cli.campusSvc.Upsert(ctx, upd); err != nil {
			return err
		}
	}
	fmt.Fprintf(cli.out, "%s: %.6f, %.6f within %.0fm (enforced: %t)\n", loc.Label, loc.Lat, loc.Lng, loc.RadiusMeters, loc.IsEnabled)
	return nil
}
