package main

import (
	"inmodraft/cmd/client/cmd"
)

func main() {
	cmd.Execute()
}
