package main

import (
	"github.com/spf13/cobra"

	"github.com/iliyamo/review-catalog/internal/catalog"
	"github.com/iliyamo/review-catalog/internal/demo"
	"github.com/iliyamo/review-catalog/internal/service"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a sample review session and print the reports",
	Long:  `Register three movies and three users in memory, submit one review each, and print the critic ranking, top movies, period average and title average.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewReviewService(catalog.New(), nil, nil)
		if err := demo.Populate(cmd.Context(), svc); err != nil {
			return err
		}
		return demo.Report(cmd.OutOrStdout(), svc)
	},
}
