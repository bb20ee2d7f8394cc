package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mehmetcc/resirent/internal/auth"
	"github.com/mehmetcc/resirent/internal/client"
	"github.com/mehmetcc/resirent/internal/person"
	"github.com/mehmetcc/resirent/internal/rental"
	"github.com/spf13/cobra"
)

// gate applies the screen guard of a command to the stored identity.
func gate(a *app, roles ...person.Role) error {
	switch d := auth.Authorize(a.auth.Identity(), roles...); d {
	case auth.Allow:
		return nil
	case auth.DenyAnonymous:
		return errors.New("not signed in; run `resirent login` first")
	default:
		return fmt.Errorf("this command needs one of the roles %v", roles)
	}
}

func idArg(args []string) (int64, error) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// apiErr reduces API failures to the message a user should read.
func apiErr(err error) error {
	if err == nil {
		return nil
	}
	var e *client.APIError
	if errors.As(err, &e) {
		return errors.New(e.Message)
	}
	return err
}

func newListingsCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "listings",
		Short: "List the public residences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(cmd, func(ctx context.Context, a *app) error {
				list, err := a.rental.ListPublicResidences(ctx)
				if err != nil {
					return apiErr(err)
				}
				printPublicResidences(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
}

func newListingCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "listing <id>",
		Short: "Show a public residence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			return st.run(cmd, func(ctx context.Context, a *app) error {
				detail, err := a.rental.GetPublicResidence(ctx, id)
				if err != nil {
					return apiErr(err)
				}
				printResidenceDetail(cmd.OutOrStdout(), detail)
				return nil
			})
		},
	}
}

func newMyListingsCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "my-listings",
		Short: "List your own residences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(cmd, func(ctx context.Context, a *app) error {
				if err := gate(a, person.RoleOwner); err != nil {
					return err
				}
				list, err := a.rental.ListOwnerResidences(ctx)
				if err != nil {
					return apiErr(err)
				}
				printResidences(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
}

func newCreateListingCmd(st *rootState) *cobra.Command {
	var (
		in     rental.ResidenceInput
		images []string
	)
	cmd := &cobra.Command{
		Use:   "create-listing",
		Short: "Publish a residence within your listing entitlement",
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readFiles(images)
			if err != nil {
				return err
			}
			in.Images = files
			return st.run(cmd, func(ctx context.Context, a *app) error {
				if err := gate(a, person.RoleOwner); err != nil {
					return err
				}
				res, err := a.rental.CreateResidenceWithin(ctx, a.auth.Identity(), in)
				if errors.Is(err, rental.ErrListingLimit) {
					return errors.New("listing limit reached; contact the administrator to upgrade your plan")
				}
				if err != nil {
					return apiErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created listing %d\n", res.ID)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "title")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.Address, "address", "", "street address")
	f.StringVar(&in.City, "city", "", "city")
	f.StringVar(&in.Country, "country", "", "country")
	f.StringVar(&in.PricePerNight, "price", "", "price per night, e.g. 120.00")
	f.BoolVar(&in.IsAvailable, "available", true, "open for bookings")
	f.StringVar(&in.Conditions, "conditions", "", "house rules")
	f.StringSliceVar(&images, "image", nil, "photo to upload; repeatable")
	return cmd
}

func newUpdateListingCmd(st *rootState) *cobra.Command {
	var images []string
	cmd := &cobra.Command{
		Use:   "update-listing <id>",
		Short: "Change fields of one of your residences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			var upd rental.ResidenceUpdate
			f := cmd.Flags()
			for name, dst := range map[string]**string{
				"title":       &upd.Title,
				"description": &upd.Description,
				"address":     &upd.Address,
				"city":        &upd.City,
				"country":     &upd.Country,
				"price":       &upd.PricePerNight,
				"conditions":  &upd.Conditions,
			} {
				if f.Changed(name) {
					v, _ := f.GetString(name)
					*dst = &v
				}
			}
			if f.Changed("available") {
				v, _ := f.GetBool("available")
				upd.IsAvailable = &v
			}
			if upd.Images, err = readFiles(images); err != nil {
				return err
			}

			return st.run(cmd, func(ctx context.Context, a *app) error {
				if err := gate(a, person.RoleOwner); err != nil {
					return err
				}
				res, err := a.rental.UpdateResidence(ctx, id, upd)
				if err != nil {
					return apiErr(err)
				}
				printResidences(cmd.OutOrStdout(), []rental.Residence{*res})
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.String("title", "", "title")
	f.String("description", "", "description")
	f.String("address", "", "street address")
	f.String("city", "", "city")
	f.String("country", "", "country")
	f.String("price", "", "price per night")
	f.String("conditions", "", "house rules")
	f.Bool("available", true, "open for bookings")
	f.StringSliceVar(&images, "image", nil, "photo to add; repeatable")
	return cmd
}

func newDeleteListingCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-listing <id>",
		Short: "Remove one of your residences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			return st.run(cmd, func(ctx context.Context, a *app) error {
				if err := gate(a, person.RoleOwner); err != nil {
					return err
				}
				if err := a.rental.DeleteResidence(ctx, id); err != nil {
					return apiErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted listing %d\n", id)
				return nil
			})
		},
	}
}

func newBookCmd(st *rootState) *cobra.Command {
	var req rental.BookingRequest
	cmd := &cobra.Command{
		Use:   "book <listing-id>",
		Short: "Request a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			req.Residence = id
			return st.run(cmd, func(ctx context.Context, a *app) error {
				if err := gate(a); err != nil {
					return err
				}
				b, err := a.rental.CreateBooking(ctx, req)
				if err != nil {
					return apiErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "booking %d is %s\n", b.ID, b.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&req.CheckInDate, "from", "", "check-in date, YYYY-MM-DD")
	cmd.Flags().StringVar(&req.CheckOutDate, "to", "", "check-out date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newBookingsCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List bookings on your residences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(cmd, func(ctx context.Context, a *app) error {
				if err := gate(a, person.RoleOwner); err != nil {
					return err
				}
				list, err := a.rental.ListOwnerBookings(ctx)
				if err != nil {
					return apiErr(err)
				}
				printBookings(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
}

func newSetBookingStatusCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:       "set-booking-status <booking-id> <pending|confirmed|cancelled>",
		Short:     "Confirm or cancel a booking on your residence",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(rental.BookingPending), string(rental.BookingConfirmed), string(rental.BookingCancelled)},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			status := rental.BookingStatus(args[1])
			return st.run(cmd, func(ctx context.Context, a *app) error {
				if err := gate(a, person.RoleOwner); err != nil {
					return err
				}
				b, err := a.rental.UpdateBookingStatus(ctx, id, status)
				if err != nil {
					return apiErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "booking %d is %s\n", b.ID, b.Status)
				return nil
			})
		},
	}
}

func newDashboardCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Owner overview of listings and bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(cmd, func(ctx context.Context, a *app) error {
				if err := gate(a, person.RoleOwner); err != nil {
					return err
				}
				d, err := a.rental.Dashboard(ctx, a.auth.Identity())
				if err != nil {
					return apiErr(err)
				}
				printDashboard(cmd.OutOrStdout(), d)
				return nil
			})
		},
	}
}
