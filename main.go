package main

import "github.com/face-sentry/face-sentry/cmd"

func main() {
	cmd.Execute()
}
