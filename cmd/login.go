package cmd

import (
	"context"
	"fmt"

	"github.com/owlandlion/access-cli/internal"
	"github.com/spf13/cobra"
)

var loginCode string

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange an authorization code for a session",
	Long: `Exchange an authorization code from the identity provider for an access
token and store the resulting session locally. All other commands use this
session until logout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if loginCode == "" {
			return fmt.Errorf("missing --code (obtain one from the sign-in page)")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
		defer cancel()

		// Login is unauthenticated; the client gets an empty session.
		client := apiClient(cfg, &internal.Session{})
		resp, err := client.Login(ctx, loginCode)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		session, err := internal.NewSession(resp.AccessToken, resp.Name, resp.Email)
		if err != nil {
			return fmt.Errorf("login returned an unusable token: %w", err)
		}
		if err := internal.SaveSession(session, cfg.DataDir); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("✅ Logged in as %s <%s>", resp.Name, resp.Email)))
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		session, err := internal.LoadSession(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if session != nil {
			session.Clear()
		}
		if err := internal.RemoveSession(cfg.DataDir); err != nil {
			return fmt.Errorf("failed to remove session: %w", err)
		}

		fmt.Println(successStyle.Render("✅ Logged out"))
		return nil
	},
}

// whoamiCmd represents the whoami command
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		session, err := internal.LoadSession(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if session == nil || session.Token() == "" {
			fmt.Println(warningStyle.Render("⚠️  Not logged in"))
			return nil
		}

		fmt.Printf("User:  %s <%s>\n", session.Name, session.Email)
		fmt.Printf("ID:    %s\n", session.User())
		if session.ChatSession() != "" {
			fmt.Printf("Chat:  session %s\n", session.ChatSession())
		}
		if session.Expired() {
			fmt.Println(warningStyle.Render("⚠️  Session expired, run `access-cli login` again"))
		} else {
			fmt.Println(successStyle.Render("✅ Session active"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	loginCmd.Flags().StringVar(&loginCode, "code", "", "Authorization code from the sign-in page")
}
