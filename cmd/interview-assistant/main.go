package main

import (
	"os"

	"github.com/interviewkit/interview-assistant/assistantservice"
)

func main() {
	if err := assistantservice.Run(); err != nil {
		os.Exit(1)
	}
}
