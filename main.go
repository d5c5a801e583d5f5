// Package main is the entry point for the defmetrics CLI tool, which merges
// basketball defensive event tables into per-defender summaries and drilldowns.
package main

import "github.com/pable/go-defense-metrics/cmd"

func main() {
	cmd.Execute()
}
