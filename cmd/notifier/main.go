package main

import "class_openings_notifier/cmd/notifier/cmd"

func main() {
	cmd.Execute()
}
