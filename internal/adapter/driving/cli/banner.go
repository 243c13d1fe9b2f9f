package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/diillson/cloudability-export-go/pkg/console"
	"github.com/diillson/cloudability-export-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
   _____ _                 _       _     _ _ _ _           ______                       _   
  / ____| |               | |     | |   (_) (_) |         |  ____|                     | |  
 | |    | | ___  _   _  __| | __ _| |__  _| |_| |_ _   _  | |__  __  ___ __   ___  _ __| |_ 
 | |    | |/ _ \| | | |/ _' |/ _' | '_ \| | | | __| | | | |  __| \ \/ / '_ \ / _ \| '__| __|
 | |____| | (_) | |_| | (_| | (_| | |_) | | | | |_| |_| | | |____ >  <| |_) | (_) | |  | |_ 
  \_____|_|\___/ \__,_|\__,_|\__,_|_.__/|_|_|_|\__|\__, | |______/_/\_\ .__/ \___/|_|   \__|
                                                    __/ |             | |                   
                                                   |___/              |_|                   
        `
	fmt.Fprintln(color.Output, console.BrightMagenta(banner))

	formattedVersion := version.FormatVersion()
	if versionStr != "" && versionStr != version.Version {
		formattedVersion = versionStr
	}
	fmt.Fprintln(color.Output, console.BrightCyan(fmt.Sprintf("Cloudability Export CLI (v%s)", formattedVersion)))
}
