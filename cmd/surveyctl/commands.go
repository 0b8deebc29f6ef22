package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"invisinsights/internal/model"
	"invisinsights/internal/service"
	"invisinsights/internal/survey"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "surveyctl",
		Short:        "Offline tools for SurveyMonkey survey configs",
		SilenceUsage: true,
	}
	root.AddCommand(newAutoMapCmd(), newSynthesizeCmd(), newValidateCmd())
	return root
}

func newAutoMapCmd() *cobra.Command {
	var detailsPath, surveyID, collectorID, policyPath string

	cmd := &cobra.Command{
		Use:   "automap",
		Short: "Map SurveyMonkey survey details into a survey config",
		RunE: func(cmd *cobra.Command, args []string) error {
			var details model.SMSurveyDetails
			if err := readJSON(detailsPath, &details); err != nil {
				return err
			}
			if surveyID == "" {
				surveyID = details.ID
			}

			classifier := survey.DefaultClassifier()
			if policyPath != "" {
				p, err := survey.LoadPolicyFile(policyPath)
				if err != nil {
					return err
				}
				if classifier, err = survey.NewKeywordClassifier(p); err != nil {
					return err
				}
			}

			cfg, err := survey.NewMapper(classifier).AutoMap(surveyID, collectorID, &details)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&detailsPath, "details", "", "path to survey details JSON (GET /surveys/{id}/details)")
	cmd.Flags().StringVar(&surveyID, "survey-id", "", "survey ID (defaults to the details id)")
	cmd.Flags().StringVar(&collectorID, "collector-id", "", "collector to submit responses to")
	cmd.Flags().StringVar(&policyPath, "policy", "", "optional inference policy YAML")
	cmd.MarkFlagRequired("details")
	cmd.MarkFlagRequired("collector-id")
	return cmd
}

func newSynthesizeCmd() *cobra.Command {
	var configPath, analysisPath string

	cmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Build the survey response payload for an analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(analysisPath)
			if err != nil {
				return err
			}
			analysis, err := service.ParseAnalysis(string(raw))
			if err != nil {
				return err
			}

			result, err := survey.BuildPages(analysis.Scores, &cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "answered %d, omitted %d\n", result.Answered, result.Omitted)
			return writeJSON(cmd.OutOrStdout(), model.NewSubmissionPayload(result.Pages))
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to survey config JSON")
	cmd.Flags().StringVar(&analysisPath, "analysis", "", "path to the model's analysis output")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("analysis")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate and normalize a survey config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to survey config JSON")
	cmd.MarkFlagRequired("config")
	return cmd
}

func loadConfig(path string) (model.SurveyConfig, error) {
	var cfg model.SurveyConfig
	if err := readJSON(path, &cfg); err != nil {
		return cfg, err
	}
	return survey.Validate(cfg)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
