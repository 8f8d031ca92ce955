package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/peekapeak/peekctl/internal/api"
)

func newPhotosCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Browse and manage summit photos",
	}

	cmd.AddCommand(newPhotosListCommand(a))
	cmd.AddCommand(newPhotosDeleteCommand(a))
	cmd.AddCommand(newPhotosStatsCommand(a))
	return cmd
}

func newPhotosListCommand(a *app) *cobra.Command {
	var (
		username string
		sortBy   string
		order    string
		page     int
		perPage  int
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's summit photos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if username == "" {
				user, err := a.requireUser(ctx)
				if err != nil {
					return err
				}
				username = user.Username
			}

			if err := a.client.CheckAccess(ctx, username); err != nil {
				return describeAccessError(username, err)
			}

			opts := api.ListOptions{SortBy: sortBy, Order: order, Page: page, PerPage: perPage}

			var photos []api.SummitPhoto
			var err error
			if all {
				photos, err = a.client.AllPhotosByUser(ctx, username, opts)
			} else {
				var p api.Page[api.SummitPhoto]
				p, err = a.client.PhotosByUser(ctx, username, opts)
				photos = p.Items
				if err == nil {
					if next, ok := p.NextPage(); ok {
						defer fmt.Printf("More photos available: --page %d\n", next)
					}
				}
			}
			if err != nil {
				return err
			}

			if len(photos) == 0 {
				fmt.Printf("%s has no photos yet\n", username)
				return nil
			}

			for _, photo := range photos {
				printPhoto(photo)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Username (defaults to the logged-in user)")
	cmd.Flags().StringVar(&sortBy, "sort-by", "capturedAt", "Sort field")
	cmd.Flags().StringVar(&order, "order", "desc", "Sort order (asc, desc)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "Photos per page")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")

	return cmd
}

func newPhotosDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <photo-id>",
		Short: "Delete an uploaded photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid photo id %q", args[0])
			}

			if _, err := a.requireUser(cmd.Context()); err != nil {
				return err
			}

			if err := a.client.DeletePhoto(cmd.Context(), id); err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("photo %d not found", id)
				}
				return err
			}

			fmt.Printf("Deleted photo %d\n", id)
			return nil
		},
	}
}

func newPhotosStatsCommand(a *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a user's diary statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if username == "" {
				user, err := a.requireUser(ctx)
				if err != nil {
					return err
				}
				username = user.Username
			}

			if err := a.client.CheckAccess(ctx, username); err != nil {
				return describeAccessError(username, err)
			}

			peaks, err := a.client.SummitedPeaksCount(ctx, username)
			if err != nil {
				return err
			}
			dates, err := a.client.PhotoDatesByUser(ctx, username)
			if err != nil {
				return err
			}
			locations, err := a.client.PhotoLocationsByUser(ctx, username)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %d photos, %d located, %d distinct peaks summited\n",
				username, len(dates), len(locations), peaks)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Username (defaults to the logged-in user)")
	return cmd
}

// describeAccessError maps access probe failures onto the empty states
// the web client renders
func describeAccessError(username string, err error) error {
	if api.IsNotFound(err) {
		return fmt.Errorf("user %s not found", username)
	}
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%s's diary is private", username)
	}
	return err
}

func printPhoto(photo api.SummitPhoto) {
	line := fmt.Sprintf("#%d  %s", photo.ID, photo.FileName)
	if photo.CapturedAt != nil {
		line += "  " + photo.CapturedAt.Format(time.RFC3339)
	}
	if photo.Peak != nil {
		line += fmt.Sprintf("  %s (%.0f m)", photo.Peak.Name, photo.Peak.Elevation)
	} else if photo.Lat != nil && photo.Lng != nil {
		line += fmt.Sprintf("  %.5f, %.5f", *photo.Lat, *photo.Lng)
	}
	fmt.Println(line)
}
