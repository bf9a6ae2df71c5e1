package main

import "jobbots/services/ingestion/cmd/jobbot/cmd"

func main() {
	cmd.Execute()
}
