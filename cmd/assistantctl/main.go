package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag  string
	userFlag string
	rootCmd  = &cobra.Command{
		Use:   "assistantctl",
		Short: "CLI client for the interview assistant REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Interview assistant base URL")

	// generate subcommand
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate unique interview questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			questionType, _ := cmd.Flags().GetString("type")
			jobTitle, _ := cmd.Flags().GetString("job")
			skill, _ := cmd.Flags().GetString("skill")
			n, _ := cmd.Flags().GetInt("n")
			if userFlag == "" {
				return fmt.Errorf("--user required")
			}
			return runGenerate(apiFlag, userFlag, questionType, jobTitle, skill, n, os.Stdout)
		},
	}
	generateCmd.Flags().StringVarP(&userFlag, "user", "u", "", "User ID (required)")
	generateCmd.Flags().StringP("type", "t", "exercise", "Question type (exercise, knowledge question)")
	generateCmd.Flags().StringP("job", "j", "data engineer", "Job title")
	generateCmd.Flags().StringP("skill", "s", "", "Skill to test (required)")
	generateCmd.Flags().IntP("n", "n", 1, "Number of questions to generate")
	_ = generateCmd.MarkFlagRequired("skill")
	rootCmd.AddCommand(generateCmd)

	// get subcommand
	getCmd := &cobra.Command{
		Use:   "get <questionId>",
		Short: "Fetch a stored question by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(apiFlag, args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(getCmd)

	// tip subcommand
	tipCmd := &cobra.Command{
		Use:   "tip <questionId>",
		Short: "Generate a unique tip for a stored question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTip(apiFlag, args[0], os.Stdout)
		},
	}
	rootCmd.AddCommand(tipCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
