// Command reminderctl controls a running reminder-server.
package main

import "github.com/oshokin/med-reminder/cmd/reminderctl/cmd"

func main() {
	cmd.Execute()
}
