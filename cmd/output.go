package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mehmetcc/resirent/internal/rental"
	"github.com/mehmetcc/resirent/internal/token"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printIdentity(w io.Writer, c *token.Claims) {
	if c == nil {
		fmt.Fprintln(w, "anonymous")
		return
	}
	fmt.Fprintf(w, "%s %s <%s>\nrole: %s\nstatus: %s\n", c.FirstName, c.LastName, c.Email, c.Role, c.AccountStatus)
	if c.IsOwner() {
		fmt.Fprintf(w, "listing limit: %d\n", c.ResidencesToPublish)
	}
}

func printPublicResidences(w io.Writer, list []rental.PublicResidence) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCITY\tPRICE/NIGHT")
	for _, r := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Title, r.City, r.PricePerNight)
	}
	_ = tw.Flush()
}

func printResidenceDetail(w io.Writer, r *rental.ResidenceDetail) {
	fmt.Fprintf(w, "%s\n%s, %s, %s\n%s per night, hosted by %s\n\n%s\n",
		r.Title, r.Address, r.City, r.Country, r.PricePerNight, r.Owner.FirstName, r.Description)
	if r.Conditions != nil {
		fmt.Fprintf(w, "\nConditions: %s\n", *r.Conditions)
	}
	for _, p := range r.Photos {
		fmt.Fprintf(w, "photo: %s\n", p.Image)
	}
}

func printResidences(w io.Writer, list []rental.Residence) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tTITLE\tCITY\tPRICE/NIGHT\tAVAILABLE\tPHOTOS")
	for _, r := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%d\n", r.ID, r.Title, r.City, r.PricePerNight, r.IsAvailable, len(r.Photos))
	}
	_ = tw.Flush()
}

func printBookings(w io.Writer, list []rental.Booking) {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tLISTING\tGUEST\tFROM\tTO\tNIGHTS\tSTATUS")
	for _, b := range list {
		guest := ""
		if b.Guest != nil {
			guest = b.Guest.FirstName + " " + b.Guest.LastName
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			b.ID, b.ResidenceTitle, guest, b.CheckInDate, b.CheckOutDate, b.Nights(), b.Status)
	}
	_ = tw.Flush()
}

func printDashboard(w io.Writer, d *rental.Dashboard) {
	fmt.Fprintf(w, "Listings (%d of %d)\n", len(d.Residences), d.Limit)
	printResidences(w, d.Residences)
	if !d.CanAddResidence {
		fmt.Fprintln(w, "Listing limit reached.")
	}
	fmt.Fprintf(w, "\nBookings (%d)\n", len(d.Bookings))
	printBookings(w, d.Bookings)
}
