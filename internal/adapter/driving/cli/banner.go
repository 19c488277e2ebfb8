package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fatih/color"

	"github.com/opticini/opticini-cli/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner() {
	banner := `
   ____        _   _      _       _
  / __ \      | | (_)    (_)     (_)
 | |  | |_ __ | |_ _  ___ _ _ __  _
 | |  | | '_ \| __| |/ __| | '_ \| |
 | |__| | |_) | |_| | (__| | | | | |
  \____/| .__/ \__|_|\___|_|_| |_|_|
        | |
        |_|
`
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(cyan(banner))
	fmt.Println(blue(fmt.Sprintf("Opticini CLI (v%s)", version.FormatVersion())))
}

// checkLatestVersion avisa quando há uma versão mais recente publicada.
// Falhas de rede são ignoradas.
func checkLatestVersion(ctx context.Context) {
	latest, err := version.LatestRelease(ctx, http.DefaultClient, version.ReleasesURL)
	if err != nil || !version.IsNewer(latest, version.Version) {
		return
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Println(yellow(fmt.Sprintf("A new version of the Opticini CLI is available: %s", latest)))
	fmt.Println("Please update using: go install github.com/opticini/opticini-cli/cmd/opticini@latest")
}
