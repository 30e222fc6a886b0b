// Package main provides the job-tailor CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tailor_agent",
	Short: "Tailor a resume and cover letter to a specific job posting",
	Long:  "tailor_agent runs an agent pipeline that parses a job posting, matches it against your experience, and generates a tailored resume, cover letter, and fact-check report.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
