package main

import "pricemonitor/cmd/pricemonitor/cmd"

func main() {
	cmd.Execute()
}
