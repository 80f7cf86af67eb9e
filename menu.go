package main

import (
	"context"
	"fmt"

	"tracktidy/config"
	"tracktidy/services"
	"tracktidy/types"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
)

const quitLabel = "Quit"

// menuAction is one selectable entry in the interactive menu
type menuAction struct {
	label string
	run   func(m *menu) error
}

// menuActions is the dispatch table for the interactive menu, in display order
var menuActions = []menuAction{
	{"Edit tags", (*menu).editTags},
	{"Convert audio file", (*menu).convertFile},
	{"Fetch cover art", (*menu).fetchCoverArt},
	{"Batch convert a directory", (*menu).batchConvert},
	{"Batch edit tags in a directory", (*menu).batchTags},
	{"Spotify credentials", (*menu).manageCredentials},
}

// menu drives the interactive session
type menu struct {
	editor    services.TagEditor
	converter *services.Converter
	cover     *services.CoverArtService
	library   services.LibraryService
	workers   int
}

// newMenu wires the services behind the interactive menu
func newMenu(creds config.Credentials) *menu {
	editor := services.NewTagEditor()
	encoder := services.NewFFmpegEncoder(services.FindExecutable("ffmpeg"))
	cover := services.NewCoverArtService(creds)
	cover.SetPicker(pickCandidate)

	return &menu{
		editor:    editor,
		converter: services.NewConverter(encoder),
		cover:     cover,
		library:   services.NewLibraryService(editor),
		workers:   2,
	}
}

// Run loops the menu until the user quits or the prompt is interrupted
func (m *menu) Run() {
	options := make([]string, 0, len(menuActions)+1)
	byLabel := make(map[string]func(m *menu) error, len(menuActions))
	for _, action := range menuActions {
		options = append(options, action.label)
		byLabel[action.label] = action.run
	}
	options = append(options, quitLabel)

	for {
		var choice string
		prompt := &survey.Select{
			Message: "What would you like to do?",
			Options: options,
		}
		if err := survey.AskOne(prompt, &choice); err != nil {
			// Ctrl+C lands here
			return
		}

		if choice == quitLabel {
			color.Cyan("Goodbye!")
			return
		}

		if err := byLabel[choice](m); err != nil {
			color.Red("Error: %v", err)
		}
		fmt.Println()
	}
}

// askPath prompts for a file or directory path
func askPath(message string) (string, error) {
	var path string
	err := survey.AskOne(&survey.Input{Message: message}, &path, survey.WithValidator(survey.Required))
	return path, err
}

// askFormat prompts for a conversion target format
func askFormat() (types.Format, error) {
	options := make([]string, len(types.SupportedFormats))
	for i, f := range types.SupportedFormats {
		options[i] = string(f)
	}

	var choice string
	err := survey.AskOne(&survey.Select{Message: "Target format:", Options: options}, &choice)
	if err != nil {
		return "", err
	}

	format, _ := types.ParseFormat(choice)
	return format, nil
}

// pickCandidate lets the user choose between artwork search results
func pickCandidate(candidates []services.ArtworkCandidate) int {
	if len(candidates) == 1 {
		return 0
	}

	options := make([]string, len(candidates))
	for i, c := range candidates {
		options[i] = fmt.Sprintf("%s by %s [%s]", c.TrackName, c.ArtistName, c.AlbumName)
	}

	var idx int
	prompt := &survey.Select{Message: "Pick a match:", Options: options}
	if err := survey.AskOne(prompt, &idx); err != nil {
		return 0
	}
	return idx
}

// editTags reads a file's tags, prompts for replacements, and writes them.
// Empty answers keep the existing values.
func (m *menu) editTags() error {
	path, err := askPath("Audio file path:")
	if err != nil {
		return err
	}

	tags, err := m.editor.ReadTags(path)
	if err != nil {
		return err
	}

	color.Cyan("Current tags:")
	fmt.Printf("  Title:  %s\n  Artist: %s\n  Album:  %s\n  Genre:  %s\n",
		tags.Title, tags.Artist, tags.Album, tags.Genre)
	color.Yellow("Leave a field blank to keep its current value.")

	questions := []*survey.Question{
		{Name: "title", Prompt: &survey.Input{Message: "Title:"}},
		{Name: "artist", Prompt: &survey.Input{Message: "Artist:"}},
		{Name: "album", Prompt: &survey.Input{Message: "Album:"}},
		{Name: "genre", Prompt: &survey.Input{Message: "Genre:"}},
	}

	var updates types.TagUpdates
	if err := survey.Ask(questions, &updates); err != nil {
		return err
	}

	if updates.IsEmpty() {
		color.Yellow("Nothing to change.")
		return nil
	}

	if err := m.editor.WriteTags(path, updates); err != nil {
		return err
	}

	color.Green("Tags updated for %s", path)
	return nil
}

// convertFile transcodes a single file into a chosen format
func (m *menu) convertFile() error {
	path, err := askPath("Audio file path:")
	if err != nil {
		return err
	}

	format, err := askFormat()
	if err != nil {
		return err
	}

	var outputDir string
	if err := survey.AskOne(&survey.Input{Message: "Output directory (blank for same folder):"}, &outputDir); err != nil {
		return err
	}

	if duration, err := services.AudioDuration(context.Background(), path); err == nil {
		color.Cyan("Converting %s (%.1fs) to %s...", path, duration, format)
	} else {
		color.Cyan("Converting %s to %s...", path, format)
	}
	output, err := m.converter.Convert(context.Background(), path, format, outputDir)
	if err != nil {
		return err
	}

	color.Green("Created %s", output)
	return nil
}

// fetchCoverArt searches the catalog for artwork and embeds it into an MP3.
// Track and artist queries default to the file's existing tags.
func (m *menu) fetchCoverArt() error {
	if !m.cover.HasCredentials() {
		color.Yellow("Cover art lookups need Spotify API credentials (set up once).")
		if err := m.setCredentials(); err != nil {
			return err
		}
	}

	path, err := askPath("MP3 file path:")
	if err != nil {
		return err
	}

	trackDefault, artistDefault := "", ""
	if tags, err := m.editor.ReadTags(path); err == nil {
		trackDefault = tags.Title
		artistDefault = tags.Artist
	}

	var track, artist string
	if err := survey.AskOne(&survey.Input{Message: "Track name:", Default: trackDefault}, &track, survey.WithValidator(survey.Required)); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Input{Message: "Artist name:", Default: artistDefault}, &artist, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	candidate, err := m.cover.FetchAndEmbed(context.Background(), types.JobRequest{
		Source:      path,
		TrackQuery:  track,
		ArtistQuery: artist,
	})
	if err != nil {
		return err
	}

	color.Green("Embedded artwork from %q by %s into %s", candidate.TrackName, candidate.ArtistName, path)
	return nil
}

// batchConvert transcodes every audio file in a directory
func (m *menu) batchConvert() error {
	dir, err := askPath("Directory to process:")
	if err != nil {
		return err
	}

	format, err := askFormat()
	if err != nil {
		return err
	}

	var outputDir string
	if err := survey.AskOne(&survey.Input{Message: "Output directory (blank for same folder):"}, &outputDir); err != nil {
		return err
	}

	op := services.ConvertOperation{Converter: m.converter, Format: format, OutputDir: outputDir}
	return m.runBatch(dir, op)
}

// batchTags applies a tag template to every audio file in a directory
func (m *menu) batchTags() error {
	dir, err := askPath("Directory to process:")
	if err != nil {
		return err
	}

	color.Yellow("Leave a field blank to keep existing values.")
	color.Yellow("Title supports {filename} and {n} (leading track number) placeholders.")

	questions := []*survey.Question{
		{Name: "title", Prompt: &survey.Input{Message: "Title template:"}},
		{Name: "artist", Prompt: &survey.Input{Message: "Artist:"}},
		{Name: "album", Prompt: &survey.Input{Message: "Album:"}},
		{Name: "genre", Prompt: &survey.Input{Message: "Genre:"}},
	}

	var updates types.TagUpdates
	if err := survey.Ask(questions, &updates); err != nil {
		return err
	}

	if updates.IsEmpty() {
		color.Yellow("Nothing to change.")
		return nil
	}

	op := services.TagEditOperation{Editor: m.editor, Updates: updates}
	return m.runBatch(dir, op)
}

// runBatch enumerates a directory, confirms, and runs the operation over
// every audio file with per-file progress output
func (m *menu) runBatch(dir string, op services.BatchOperation) error {
	files, err := m.library.ListAudioFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No audio files found in %s", dir)
		return nil
	}

	proceed := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Run %s on %d files?", op.Name(), len(files)),
		Default: true,
	}
	if err := survey.AskOne(prompt, &proceed); err != nil || !proceed {
		return err
	}

	processor := services.NewBatchProcessor(m.workers)
	processor.SetProgress(func(done, total int, path string, err error) {
		if err != nil {
			color.Red("  [%d/%d] %s: %v", done, total, path, err)
		} else {
			color.Green("  [%d/%d] %s", done, total, path)
		}
	})

	summary := processor.Run(context.Background(), files, op)

	fmt.Println()
	color.Green("%d succeeded", summary.Succeeded)
	if summary.Failed > 0 {
		color.Red("%d failed:", summary.Failed)
		for _, entry := range summary.Failures() {
			color.Red("  %s: %s", entry.Path, entry.Reason)
		}
	}
	return nil
}

// manageCredentials shows credential status and lets the user set or
// reset the stored Spotify client id/secret
func (m *menu) manageCredentials() error {
	if m.cover.HasCredentials() {
		color.Green("Spotify credentials are configured (%s)", config.CredentialsPath())
	} else {
		color.Yellow("Spotify credentials are not configured.")
	}

	var choice string
	prompt := &survey.Select{
		Message: "Credentials:",
		Options: []string{"Set new credentials", "Reset credentials", "Back"},
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return err
	}

	switch choice {
	case "Set new credentials":
		return m.setCredentials()
	case "Reset credentials":
		if err := config.ResetCredentials(); err != nil {
			return err
		}
		m.cover.SetCredentials(config.Credentials{})
		color.Green("Credentials reset.")
	}
	return nil
}

// setCredentials prompts for a client id/secret, validates them with a
// probe search, and persists them on success
func (m *menu) setCredentials() error {
	var creds config.Credentials
	questions := []*survey.Question{
		{Name: "clientID", Prompt: &survey.Input{Message: "Spotify client ID:"}, Validate: survey.Required},
		{Name: "clientSecret", Prompt: &survey.Password{Message: "Spotify client secret:"}, Validate: survey.Required},
	}
	if err := survey.Ask(questions, &creds); err != nil {
		return err
	}

	color.Cyan("Validating credentials...")
	probe := services.NewCoverArtService(creds)
	if err := probe.Validate(context.Background()); err != nil {
		return fmt.Errorf("credential validation failed: %w", err)
	}

	if err := config.SaveCredentials(creds); err != nil {
		return err
	}

	m.cover.SetCredentials(creds)
	color.Green("Credentials validated and saved.")
	return nil
}
