package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gbatdev/gcp-billing-report-go/pkg/version"
)

// displayWelcomeBanner prints the welcome banner with version information.
func displayWelcomeBanner(versionStr string) {
	banner := `
          /$$$$$$           /$$$$$$$   /$$$$$$  /$$$$$$$$
         /$$__  $$         | $$__  $$ /$$__  $$|__  $$__/
        | $$  \__/         | $$  \ $$| $$  \ $$   | $$
        | $$ /$$$$ /$$$$$$ | $$$$$$$ | $$$$$$$$   | $$
        | $$|_  $$|______/ | $$__  $$| $$__  $$   | $$
        | $$  \ $$         | $$  \ $$| $$  | $$   | $$
        |  $$$$$$/         | $$$$$$$/| $$  | $$   | $$
         \______/          |_______/ |__/  |__/   |__/
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("GCP Billing Report CLI (v%s)", formattedVersion)))
}
