package main

import (
	"yatube/cmd/server/commands"
	"yatube/internal/app"
)

func main() {
	app.Must(commands.Execute())
}
