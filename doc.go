/*
	Project: Cambria Academy - training hours for cosmetology and nail technology students

	apps/api    HTTP API used by the web frontend and the clock CLI
	apps/admin  operator tasks: migrations, users, campus location, dev tokens
	apps/clock  the student's time clock: clock in/out within the campus geofence
*/
package academy
