package main

import "github.com/buytown/admin-console/internal/cli/cmd"

func main() {
	cmd.Execute()
}
