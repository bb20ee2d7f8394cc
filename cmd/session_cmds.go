package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/mehmetcc/resirent/internal/auth"
	"github.com/mehmetcc/resirent/internal/client"
	"github.com/spf13/cobra"
)

func newLoginCmd(st *rootState) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(cmd, func(ctx context.Context, a *app) error {
				claims, err := a.auth.Login(ctx, email, password)
				if errors.Is(err, auth.ErrInvalidCredentials) {
					return errors.New("no active account found with the given credentials")
				}
				if err != nil {
					return apiErr(err)
				}
				printIdentity(cmd.OutOrStdout(), claims)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(cmd, func(ctx context.Context, a *app) error {
				if err := a.auth.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "logged out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity of the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(cmd, func(ctx context.Context, a *app) error {
				printIdentity(cmd.OutOrStdout(), a.auth.Identity())
				return nil
			})
		},
	}
}

func newRegisterRenterCmd(st *rootState) *cobra.Command {
	var reg auth.RenterRegistration
	cmd := &cobra.Command{
		Use:   "register-renter",
		Short: "Create a renter account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.run(cmd, func(ctx context.Context, a *app) error {
				user, err := a.auth.RegisterRenter(ctx, reg)
				if err != nil {
					return apiErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", user.Username, user.Email)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&reg.Email, "email", "", "email")
	f.StringVar(&reg.Username, "username", "", "username")
	f.StringVar(&reg.Password, "password", "", "password")
	f.StringVar(&reg.FirstName, "first-name", "", "first name")
	f.StringVar(&reg.LastName, "last-name", "", "last name")
	f.StringVar(&reg.PhoneNumber, "phone", "", "phone number")
	return cmd
}

func newRegisterOwnerCmd(st *rootState) *cobra.Command {
	var (
		reg         auth.OwnerRegistration
		front, back string
	)
	cmd := &cobra.Command{
		Use:   "register-owner",
		Short: "Apply for an owner account; it stays pending until approved",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if reg.IDFrontPhoto, err = readFile(front); err != nil {
				return err
			}
			if reg.IDBackPhoto, err = readFile(back); err != nil {
				return err
			}
			return st.run(cmd, func(ctx context.Context, a *app) error {
				user, err := a.auth.RegisterOwner(ctx, reg)
				if err != nil {
					return apiErr(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered owner %s (%s)\n", user.Username, user.Email)
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&reg.Email, "email", "", "email")
	f.StringVar(&reg.Username, "username", "", "username")
	f.StringVar(&reg.Password, "password", "", "password")
	f.StringVar(&reg.FirstName, "first-name", "", "first name")
	f.StringVar(&reg.LastName, "last-name", "", "last name")
	f.StringVar(&reg.Address, "address", "", "postal address")
	f.StringVar(&reg.PhoneNumber, "phone", "", "phone number")
	f.IntVar(&reg.ResidencesToPublish, "residences", 1, "number of listings to publish")
	f.StringVar(&front, "id-front", "", "path to the front photo of the ID card")
	f.StringVar(&back, "id-back", "", "path to the back photo of the ID card")
	_ = cmd.MarkFlagRequired("id-front")
	_ = cmd.MarkFlagRequired("id-back")
	return cmd
}

func readFile(path string) (client.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return client.File{}, err
	}
	return client.File{
		Name:        filepath.Base(path),
		ContentType: contentType(path),
		Data:        data,
	}, nil
}

func readFiles(paths []string) ([]client.File, error) {
	out := make([]client.File, 0, len(paths))
	for _, p := range paths {
		f, err := readFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
