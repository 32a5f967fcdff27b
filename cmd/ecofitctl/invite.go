package main

import (
	"fmt"

	"alcyxob/ecofit/internal/domain"
	"alcyxob/ecofit/internal/mail"
	"alcyxob/ecofit/internal/service"

	"github.com/spf13/cobra"
)

var (
	inviteEmail   string
	inviteRole    string
	inviteProType string
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Create an invitation and print its accept link",
	Long: `Create an invitation as the system administrator.

This is how the first admin of a fresh deployment gets an account.

Example:
  ecofitctl invite --email owner@example.com --role admin
  ecofitctl invite --email coach@example.com --role professional --professional-type trainer`,
	Args: cobra.NoArgs,
	RunE: runInvite,
}

func init() {
	inviteCmd.Flags().StringVar(&inviteEmail, "email", "", "invitee email (required)")
	inviteCmd.Flags().StringVar(&inviteRole, "role", "", "admin, professional or client (required)")
	inviteCmd.Flags().StringVar(&inviteProType, "professional-type", "", "trainer, nutritionist or both")
	_ = inviteCmd.MarkFlagRequired("email")
	_ = inviteCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(inviteCmd)
}

func runInvite(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := current.openStore(ctx)
	if err != nil {
		return err
	}
	mailer, err := mail.New(ctx, current.cfg.Mail, current.logger)
	if err != nil {
		return err
	}

	input := service.CreateInvitationInput{Email: inviteEmail, Role: domain.Role(inviteRole)}
	if inviteProType != "" {
		t := domain.ProfessionalType(inviteProType)
		input.ProfessionalType = &t
	}

	cal := current.calendar()
	auth := service.NewAuthService(store.Profiles, mailer, service.AuthConfig{
		Secret:          current.cfg.JWT.Secret,
		Expiration:      current.cfg.JWT.Expiration,
		ResetExpiration: current.cfg.JWT.ResetExpiration,
		BaseURL:         current.cfg.App.BaseURL,
	}, cal, current.logger)
	invitations := service.NewInvitationService(store, auth, mailer, current.cfg.Invitations.TTL, current.cfg.App.BaseURL, cal, current.logger)

	res, err := invitations.Create(ctx, service.SystemPrincipal, input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Invitation %s for %s (%s)\n", res.Invitation.ID, res.Invitation.Email, res.Invitation.Role)
	fmt.Fprintf(out, "Expires: %s\n", res.Invitation.ExpiresAt.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(out, "Accept:  %s\n", res.AcceptURL)
	if !res.EmailSent {
		fmt.Fprintln(out, "Email was not sent; share the link directly.")
	}
	return nil
}
