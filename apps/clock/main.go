// Command clock is the student time clock: it clocks in and out on this device and submits sessions for review.
package main

import "github.com/cambria/academy/apps/clock/cmd"

func main() {
	cmd.Execute()
}
