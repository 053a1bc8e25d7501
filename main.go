package main

import (
	"os"

	"github.com/scriptguard/scriptguard/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
