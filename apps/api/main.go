// Command api serves the academy HTTP API.
package main

func main() {
	startWithDig()
}
