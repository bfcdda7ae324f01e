package main

import "github.com/pablini31/papelria/cmd/papeleriactl/commands"

func main() {
	commands.Execute()
}
