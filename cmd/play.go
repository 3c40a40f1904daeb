package cmd

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/marquee-player/marquee/aniskip"
	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/key"
	"github.com/marquee-player/marquee/log"
	"github.com/marquee-player/marquee/machine"
	"github.com/marquee-player/marquee/player"
	"github.com/marquee-player/marquee/progress"
	"github.com/marquee-player/marquee/stage"
	"github.com/marquee-player/marquee/tui"
	"github.com/marquee-player/marquee/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const aniskipTimeout = 10 * time.Second

// manifestExtensions mark sources that are adaptive streams.
var manifestExtensions = []string{".m3u8", ".mpd"}

func addChapterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("chapters", "c", "", "Read chapters from this JSON, YAML or TOML document")
	cmd.Flags().Int("mal-id", 0, "MyAnimeList id used to fetch opening and ending chapters from AniSkip")
	cmd.Flags().Int("episode", 1, "Episode number used with --mal-id")
	cmd.Flags().Bool("aniskip", false, "Fetch chapters from AniSkip even if "+key.Aniskip+" is off")
}

// loadChapters resolves the chapters of a media source: an explicit document first, then the chapters
// directory, then AniSkip when enabled.
func loadChapters(cmd *cobra.Command, media string) ([]progress.Chapter, error) {
	if path := lo.Must(cmd.Flags().GetString("chapters")); path != "" {
		data, err := filesystem.API().ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read chapters: %w", err)
		}
		return progress.ParseChapters(data, strings.TrimPrefix(filepath.Ext(path), "."))
	}

	chapters, err := progress.Load(media)
	if err != nil || len(chapters) > 0 {
		return chapters, err
	}

	malID := lo.Must(cmd.Flags().GetInt("mal-id"))
	enabled := viper.GetBool(key.Aniskip) || lo.Must(cmd.Flags().GetBool("aniskip"))
	if malID <= 0 || !enabled {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), aniskipTimeout)
	defer cancel()

	times, err := aniskip.GetSkipTimes(ctx, malID, lo.Must(cmd.Flags().GetInt("episode")))
	if err != nil {
		return nil, err
	}
	if times == nil {
		log.Infof("aniskip has no data for %d", malID)
		return nil, nil
	}

	// The duration is unknown until the resource reports its metadata.
	return progress.ChaptersFromSkipTimes(times, math.NaN()), nil
}

func sourceFor(url string) machine.Source {
	adaptive := viper.GetBool(key.PlayerAdaptive)
	if !adaptive {
		ext := strings.ToLower(filepath.Ext(strings.SplitN(url, "?", 2)[0]))
		adaptive = lo.Contains(manifestExtensions, ext)
	}
	return machine.Source{URL: url, Adaptive: adaptive}
}

func init() {
	rootCmd.AddCommand(playCmd)
	addChapterFlags(playCmd)
	playCmd.Flags().BoolP("adaptive", "a", false, "Treat the source as an adaptive stream (HLS/DASH)")
	lo.Must0(viper.BindPFlag(key.PlayerAdaptive, playCmd.Flags().Lookup("adaptive")))
	playCmd.Flags().StringP("title", "t", "", "Title shown above the player")
	playCmd.Flags().Bool("reduced-motion", false, "Skip layout transitions")
}

var playCmd = &cobra.Command{
	Use:     "play [url]",
	Short:   "Play a file or stream in the terminal player",
	Args:    cobra.ExactArgs(1),
	Example: "  marquee play ./lecture.mkv --chapters lecture.yaml\n  marquee play https://example.com/live.m3u8",
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		url := args[0]
		source := sourceFor(url)

		chapters, err := loadChapters(cmd, url)
		handleErr(err)

		width, height, err := util.TerminalSize()
		if err != nil {
			width, height = 80, 24
		}

		host := tui.NewTerminal(width, height, lo.Must(cmd.Flags().GetBool("reduced-motion")))
		feed := tui.NewFeed()

		options := stage.OptionsFromConfig()
		options.Resource = player.NewMPV(viper.GetString(key.Player))
		options.Host = host
		options.Effects = feed
		options.Chapters = chapters

		s, err := stage.New(options)
		handleErr(err)

		title := lo.Must(cmd.Flags().GetString("title"))
		if title == "" {
			title = util.FileStem(url)
		}

		err = tui.Run(&tui.Options{
			Player:   s,
			Host:     host,
			Feed:     feed,
			Source:   source,
			Title:    title,
			AutoHide: time.Duration(viper.GetInt(key.PlayerAutoHide)) * time.Millisecond,
			Width:    width,
			Height:   height,
		})
		closeErr := s.Close()

		handleErr(err)
		handleErr(closeErr)
	},
}
