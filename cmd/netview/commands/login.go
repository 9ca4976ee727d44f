package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanshika/referralnet/internal/domain"
)

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return fmt.Errorf("invalid email or password")
				}
				return err
			}
			if err := saveToken(session.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (referral code %s)\n", session.User.Name, session.ReferralCode)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func registerCmd() *cobra.Command {
	var name, email, password, code string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account, optionally under a referrer's code",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := client.Register(cmd.Context(), name, email, password, code)
			if err != nil {
				return err
			}
			if err := saveToken(session.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Share your referral code: %s\n", session.User.Name, session.ReferralCode)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&code, "referral-code", "", "referral code of the person who invited you")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token, err := currentToken(); err == nil {
				client.Forget(token)
			}
			if err := clearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
