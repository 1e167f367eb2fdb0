package commands

import (
	"github.com/spf13/cobra"

	"github.com/hbnb/lodging-core/internal/domain/entities"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manage reviews",
	}
	cmd.AddCommand(reviewCreateCmd(), reviewDeleteCmd())
	return cmd
}

func reviewCreateCmd() *cobra.Command {
	var in entities.ReviewInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Review a place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := appCtx.Facade.CreateReview(cmd.Context(), in)
			if review == nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), review); err != nil {
				return err
			}
			return committed(err)
		},
	}
	cmd.Flags().IntVar(&in.Rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&in.Comment, "comment", "", "review text")
	cmd.Flags().StringVar(&in.UserID, "user", "", "author user ID")
	cmd.Flags().StringVar(&in.PlaceID, "place", "", "reviewed place ID")
	return cmd
}

func reviewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a review and recompute the place rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return committed(appCtx.Facade.DeleteReview(cmd.Context(), args[0]))
		},
	}
}
