package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hbnb/lodging-core/internal/application/services"
	"github.com/hbnb/lodging-core/internal/domain/entities"
	apperrors "github.com/hbnb/lodging-core/pkg/errors"
)

type seedSummary struct {
	Users     int               `json:"users"`
	Amenities int               `json:"amenities"`
	Reviews   int               `json:"reviews"`
	Places    []*entities.Place `json:"places"`
}

func seedCmd() *cobra.Command {
	var (
		guests      int
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users, places, amenities and reviews",
		Long: "Load demo data. Every guest reviews every place, with the reviews " +
			"submitted concurrently so the rating recompute runs under contention.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if guests < 1 || concurrency < 1 {
				return fmt.Errorf("--guests and --concurrency must be at least 1")
			}
			summary, err := seed(cmd.Context(), appCtx.Facade, guests, concurrency)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().IntVar(&guests, "guests", 5, "number of reviewing guests")
	cmd.Flags().IntVar(&concurrency, "concurrency", 8, "maximum reviews submitted at once")
	return cmd
}

var demoPlaces = []entities.PlaceInput{
	{Title: "Harbour Loft", Description: "Top floor, sea view", Price: 120, Latitude: -33.86, Longitude: 151.21},
	{Title: "Alpine Cabin", Description: "Ski-in, ski-out", Price: 210, Latitude: 46.02, Longitude: 7.75},
	{Title: "Desert Dome", Price: 95.5, Latitude: 25.20, Longitude: 55.27},
}

var demoAmenities = []entities.AmenityInput{
	{Name: "WiFi"},
	{Name: "Parking"},
	{Name: "Hot tub", Description: "Seats six"},
}

func seed(ctx context.Context, facade *services.Facade, guests, concurrency int) (*seedSummary, error) {
	host, err := facade.CreateUser(ctx, entities.UserInput{
		Email: "host@example.com", Password: "host-password", FirstName: "Hana", LastName: "Host",
	})
	if err != nil {
		return nil, err
	}

	amenities := make([]*entities.Amenity, 0, len(demoAmenities))
	for _, in := range demoAmenities {
		amenity, err := facade.CreateAmenity(ctx, in)
		if err != nil {
			return nil, err
		}
		amenities = append(amenities, amenity)
	}

	places := make([]*entities.Place, 0, len(demoPlaces))
	for i, in := range demoPlaces {
		in.OwnerID = host.ID
		place, err := facade.CreatePlace(ctx, in)
		if err != nil {
			return nil, err
		}
		for _, amenity := range amenities[:i+1] {
			if err := facade.AddAmenityToPlace(ctx, place.ID, amenity.ID); err != nil {
				return nil, err
			}
		}
		places = append(places, place)
	}

	users := make([]*entities.PublicUser, 0, guests)
	for i := 0; i < guests; i++ {
		user, err := facade.CreateUser(ctx, entities.UserInput{
			Email:     fmt.Sprintf("guest%d@example.com", i+1),
			Password:  "guest-password",
			FirstName: "Guest",
			LastName:  fmt.Sprintf("No. %d", i+1),
		})
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, user := range users {
		for j, place := range places {
			rating := (i+j)%entities.MaxRating + 1
			in := entities.ReviewInput{
				Rating:  rating,
				Comment: fmt.Sprintf("%d stars from %s", rating, user.Email),
				UserID:  user.ID,
				PlaceID: place.ID,
			}
			g.Go(func() error {
				_, err := facade.CreateReview(gctx, in)
				if apperrors.IsStale(err) {
					log.Warn().Err(err).Str("place_id", in.PlaceID).Msg("seeded review left a stale rating")
					return nil
				}
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &seedSummary{
		Users:     len(users) + 1,
		Amenities: len(amenities),
		Reviews:   len(users) * len(places),
	}
	for _, place := range places {
		current, err := facade.GetPlace(ctx, place.ID)
		if err != nil {
			return nil, err
		}
		summary.Places = append(summary.Places, current)
	}
	return summary, nil
}
