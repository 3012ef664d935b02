package main

import "github.com/nrad-K/go-job-watcher/cmd"

func main() {
	cmd.Execute()
}
