package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/owlandlion/access-cli/internal"
	"github.com/spf13/cobra"
)

var healthcheckVerbose bool

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check configuration, session, API reachability and the archive",
	Long: `Check the health of access-cli by verifying:
  • Configuration loading
  • Stored session validity
  • API reachability
  • Transcript archive access

This command is useful for debugging connectivity and setup issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 Access CLI Health Check"))
		fmt.Println()

		// Step 1: Configuration
		fmt.Println(infoStyle.Render("Step 1: Loading configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to load configuration:"), err)
			return fmt.Errorf("health check failed: configuration unreadable")
		}
		fmt.Println(successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			fmt.Printf("   API base: %s\n", cfg.APIBase)
			fmt.Printf("   Data dir: %s\n", cfg.DataDir)
			fmt.Printf("   Request timeout: %s\n", cfg.RequestTimeout)
		}
		fmt.Println()

		// Step 2: Session
		fmt.Println(infoStyle.Render("Step 2: Checking stored session..."))
		session, err := internal.LoadSession(cfg.DataDir)
		sessionOK := false
		switch {
		case err != nil:
			fmt.Println(warningStyle.Render("⚠️  Session file unreadable:"), err)
		case session == nil || session.Token() == "":
			fmt.Println(warningStyle.Render("⚠️  Not logged in"))
			fmt.Println("   Run `access-cli login --code <code>` to create a session.")
		case session.Expired():
			fmt.Println(warningStyle.Render("⚠️  Session expired"))
			fmt.Println("   Run `access-cli login` again.")
		default:
			sessionOK = true
			fmt.Println(successStyle.Render("✅ Session active"))
			if healthcheckVerbose {
				fmt.Printf("   User: %s <%s>\n", session.Name, session.Email)
			}
		}
		fmt.Println()

		// Step 3: API reachability. Uses an empty session when none is
		// stored; the health endpoint is unauthenticated.
		fmt.Println(infoStyle.Render("Step 3: Checking API reachability..."))
		if session == nil {
			session = &internal.Session{}
		}
		client := apiClient(cfg, session)
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
		defer cancel()

		apiOK := false
		if err := client.Health(ctx); err != nil {
			var statusErr *internal.StatusError
			switch {
			case errors.Is(err, internal.ErrUnauthorized):
				// Reachable, just refusing us.
				apiOK = true
				fmt.Println(successStyle.Render("✅ API reachable (authentication required)"))
			case errors.As(err, &statusErr):
				apiOK = true
				fmt.Println(warningStyle.Render(fmt.Sprintf("⚠️  API responded with status %d", statusErr.Status)))
			default:
				fmt.Println(errorStyle.Render("❌ API unreachable:"), err)
				if healthcheckVerbose {
					fmt.Printf("   Tried: %s\n", cfg.APIBase)
				}
			}
		} else {
			apiOK = true
			fmt.Println(successStyle.Render("✅ API reachable"))
		}
		fmt.Println()

		// Step 4: Transcript archive
		fmt.Println(infoStyle.Render("Step 4: Checking transcript archive..."))
		archiveOK := false
		transcriptCount := 0
		store, err := internal.OpenTranscriptStore(internal.TranscriptDBPath(cfg.DataDir))
		if err != nil {
			fmt.Println(errorStyle.Render("❌ Failed to open transcript archive:"), err)
		} else {
			summaries, listErr := store.List()
			_ = store.Close()
			if listErr != nil {
				fmt.Println(warningStyle.Render("⚠️  Archive opened but listing failed:"), listErr)
			} else {
				archiveOK = true
				transcriptCount = len(summaries)
				fmt.Println(successStyle.Render(fmt.Sprintf("✅ Archive accessible (%d transcript(s))", transcriptCount)))
				if healthcheckVerbose {
					for i, sum := range summaries {
						if i >= 5 { // Show first 5
							fmt.Printf("   ... and %d more\n", transcriptCount-5)
							break
						}
						shortID := sum.ID
						if len(shortID) > 8 {
							shortID = shortID[:8]
						}
						fmt.Printf("   [%d] %s (%s, %d messages)\n", i+1, shortID, sum.StudentName, sum.MessageCount)
					}
				}
			}
		}
		fmt.Println()

		// Summary
		fmt.Println(sectionStyle.Render("📊 Summary"))
		fmt.Println()

		if apiOK && archiveOK && sessionOK {
			fmt.Println(successStyle.Render("✅ Health check passed!"))
			fmt.Println(successStyle.Render("   • API: Reachable"))
			fmt.Println(successStyle.Render("   • Session: Active"))
			fmt.Println(successStyle.Render(fmt.Sprintf("   • Archive: %d transcript(s)", transcriptCount)))
			return nil
		}
		if apiOK && archiveOK {
			fmt.Println(warningStyle.Render("⚠️  Healthy, but no usable session"))
			fmt.Println("   • API and archive are working")
			fmt.Println("   • Log in to use the student and tutor commands")
			return nil
		}

		fmt.Println(errorStyle.Render("❌ Health check failed"))
		if !apiOK {
			fmt.Println("   • API is not reachable")
		}
		if !archiveOK {
			fmt.Println("   • Transcript archive is not accessible")
		}
		return fmt.Errorf("health check failed")
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "detail", false, "Show detailed diagnostic information")
}
