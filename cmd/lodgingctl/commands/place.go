package commands

import (
	"github.com/spf13/cobra"

	"github.com/hbnb/lodging-core/internal/domain/entities"
)

func placeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Manage places",
	}
	cmd.AddCommand(placeCreateCmd(), placeGetCmd(), placeDeleteCmd())
	return cmd
}

func placeCreateCmd() *cobra.Command {
	var in entities.PlaceInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "List a new place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			place, err := appCtx.Facade.CreatePlace(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), place)
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "title")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().Float64Var(&in.Price, "price", 0, "price per night")
	cmd.Flags().Float64Var(&in.Latitude, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&in.Longitude, "lon", 0, "longitude")
	cmd.Flags().StringVar(&in.OwnerID, "owner", "", "owner user ID")
	return cmd
}

type placeView struct {
	*entities.Place
	Amenities []*entities.Amenity `json:"amenities"`
	Reviews   []*entities.Review  `json:"reviews"`
}

func placeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a place with its amenities and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			place, err := appCtx.Facade.GetPlace(ctx, args[0])
			if err != nil {
				return err
			}
			amenities, err := appCtx.Facade.ListPlaceAmenities(ctx, place.ID)
			if err != nil {
				return err
			}
			reviews, err := appCtx.Facade.ListReviewsByPlace(ctx, place.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), placeView{Place: place, Amenities: amenities, Reviews: reviews})
		},
	}
}

func placeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a place with its reviews and amenity links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return appCtx.Facade.DeletePlace(cmd.Context(), args[0])
		},
	}
}
