package main

import "region-sync/cmd"

func main() {
	cmd.Execute()
}
