package commands

import (
	"github.com/spf13/cobra"

	"github.com/hbnb/lodging-core/internal/domain/entities"
)

func amenityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amenity",
		Short: "Manage amenities",
	}
	cmd.AddCommand(amenityCreateCmd(), amenityLinkCmd())
	return cmd
}

func amenityCreateCmd() *cobra.Command {
	var in entities.AmenityInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an amenity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amenity, err := appCtx.Facade.CreateAmenity(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), amenity)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "amenity name, unique ignoring case")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	return cmd
}

func amenityLinkCmd() *cobra.Command {
	var unlink bool
	cmd := &cobra.Command{
		Use:   "link [place-id] [amenity-id]",
		Short: "Attach an amenity to a place",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if unlink {
				return appCtx.Facade.RemoveAmenityFromPlace(cmd.Context(), args[0], args[1])
			}
			return appCtx.Facade.AddAmenityToPlace(cmd.Context(), args[0], args[1])
		},
	}
	cmd.Flags().BoolVar(&unlink, "remove", false, "detach instead of attach")
	return cmd
}
