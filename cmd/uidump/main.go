package main

import "github.com/dgallion1/uidump/internal/cli"

func main() {
	cli.Execute()
}
