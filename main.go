package main

import (
	"context"
	"flag"
	"log"
	"os"

	"tracktidy/cmd"
	"tracktidy/config"
	"tracktidy/services"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
)

func main() {
	asciiArt := `
 _____                _    _____ _     _
|_   _| __ __ _  ___| | _|_   _(_) __| |_   _
  | || '__/ _` + "`" + ` |/ __| |/ / | | | |/ _` + "`" + ` | | | |
  | || | | (_| | (__|   <  | | | | (_| | |_| |
  |_||_|  \__,_|\___|_|\_\ |_| |_|\__,_|\__, |
                                        |___/
`

	var (
		server         bool
		port           int
		downloadFFmpeg bool
	)

	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.IntVar(&port, "port", 8080, "Port for web server mode")
	flag.BoolVar(&downloadFFmpeg, "download-ffmpeg", false, "Download ffmpeg into the app directory and exit")
	flag.Parse()

	// Standalone bootstrap mode: install ffmpeg and exit
	if downloadFFmpeg {
		bootstrap := services.NewBootstrap()
		if err := bootstrap.Install(context.Background()); err != nil {
			color.Red("ffmpeg install failed: %v", err)
			os.Exit(1)
		}
		color.Green("ffmpeg is installed and ready")
		return
	}

	// Server mode takes precedence over the interactive menu
	if server {
		cmd.StartWebServer(port)
		return
	}

	color.Cyan("%s", asciiArt)

	ensureFFmpeg()

	creds, err := config.LoadCredentials()
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	menu := newMenu(creds)
	menu.Run()
}

// ensureFFmpeg checks for an ffmpeg install and offers to download one. The
// menu still starts without it; conversion just fails until it is present.
func ensureFFmpeg() {
	installed, path := services.CheckFFmpegInstalled()
	if installed {
		color.Green("ffmpeg found at %s", path)
		return
	}

	color.Yellow("ffmpeg was not found on this system. Audio conversion needs it.")

	install := false
	prompt := &survey.Confirm{
		Message: "Download ffmpeg now?",
		Default: true,
	}
	if err := survey.AskOne(prompt, &install); err != nil || !install {
		color.Yellow("Skipping ffmpeg download. Run with --download-ffmpeg to install it later.")
		return
	}

	bootstrap := services.NewBootstrap()
	if err := bootstrap.Install(context.Background()); err != nil {
		color.Red("ffmpeg install failed: %v", err)
		return
	}
	color.Green("ffmpeg is installed and ready")
}
