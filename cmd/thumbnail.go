package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/marquee-player/marquee/color"
	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/icon"
	"github.com/marquee-player/marquee/key"
	"github.com/marquee-player/marquee/log"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/open"
	"github.com/marquee-player/marquee/player"
	"github.com/marquee-player/marquee/stage"
	"github.com/marquee-player/marquee/style"
	"github.com/marquee-player/marquee/util"
	"github.com/marquee-player/marquee/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const readyTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(thumbnailCmd)
	thumbnailCmd.Flags().StringP("output", "o", "", "Write the thumbnail here instead of the thumbnails directory")
	thumbnailCmd.Flags().IntP("width", "w", 0, "Thumbnail width in pixels, overriding "+key.ScrubWidth)
	thumbnailCmd.Flags().Bool("open", false, "Open the thumbnail in the default image viewer")
}

var thumbnailCmd = &cobra.Command{
	Use:     "thumbnail [url] [seconds]",
	Short:   "Capture a preview frame of a file or stream",
	Args:    cobra.ExactArgs(2),
	Example: "  marquee thumbnail ./lecture.mkv 90 -o preview.jpg",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()
		handleErr(captureThumbnail(cmd, args[0], args[1]))
	},
}

func captureThumbnail(cmd *cobra.Command, url, seconds string) error {
	at, err := strconv.ParseFloat(seconds, 64)
	if err != nil || !util.Finite(at) || at < 0 {
		return fmt.Errorf("invalid time %q", seconds)
	}

	options := stage.OptionsFromConfig()
	options.Resource = player.NewMPV(viper.GetString(key.Player))
	options.Autoplay = true
	if width := lo.Must(cmd.Flags().GetInt("width")); width > 0 {
		options.Scrub.Width = width
	}

	s, err := stage.New(options)
	if err != nil {
		return err
	}
	defer util.Ignore(s.Close)

	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	if err := waitReady(ctx, s, sourceFor(url)); err != nil {
		return err
	}

	thumbnail, ok := s.Hover(ctx, at).Get()
	if !ok {
		return fmt.Errorf("could not capture a frame at %s", util.FormatSeconds(at))
	}

	output := lo.Must(cmd.Flags().GetString("output"))
	if output == "" {
		name := fmt.Sprintf("%s-%d.jpg", util.SanitizeFilename(util.FileStem(url)), int(thumbnail.Time*1000))
		output = filepath.Join(where.Thumbnails(), name)
	}

	if err := filesystem.API().WriteFile(output, thumbnail.Data, 0o644); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}

	fmt.Printf(
		"%s wrote %dx%d thumbnail at %s to %s\n",
		style.Fg(color.Green)(icon.Get(icon.Success)),
		thumbnail.Width,
		thumbnail.Height,
		style.Fg(color.Yellow)(util.FormatSeconds(thumbnail.Time)),
		output,
	)

	if lo.Must(cmd.Flags().GetBool("open")) {
		if err := open.Start(output); err != nil {
			log.Warn(err)
		}
	}
	return nil
}

// waitReady loads source and blocks until playback could start, then pauses it.
func waitReady(ctx context.Context, s *stage.Stage, source machine.Source) error {
	ready := make(chan machine.State, 1)
	unsubscribe := s.Subscribe(func(t machine.Transition) {
		if t.From == machine.Loading && t.To != machine.Loading {
			select {
			case ready <- t.To:
			default:
			}
		}
	})
	defer unsubscribe()

	s.Dispatch(machine.Load{Source: source})

	select {
	case state := <-ready:
		if state == machine.Error {
			_, session := s.Snapshot()
			return errors.New(session.Error.OrElse("playback failed"))
		}
		s.Dispatch(machine.Pause{})
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s did not become ready: %w", source.URL, ctx.Err())
	}
}
