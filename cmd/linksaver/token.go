package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/linksaver/internal/auth"
)

var (
	tokenEmail   string
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token with LINKSAVER_AUTH_SECRET",
	Long: `Signs an HS256 token for local testing. In production tokens come from
the identity provider sharing the same secret.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim, used as owner key")
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "subject claim, owner key when email is empty")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	if tokenEmail == "" && tokenSubject == "" {
		return errors.New("one of --email or --sub is required")
	}
	v, err := auth.NewVerifier(os.Getenv("LINKSAVER_AUTH_SECRET"))
	if err != nil {
		return err
	}

	claims := &auth.Claims{Email: tokenEmail}
	claims.Subject = tokenSubject
	token, err := v.Sign(claims, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
