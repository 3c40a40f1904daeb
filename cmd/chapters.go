package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/marquee-player/marquee/color"
	"github.com/marquee-player/marquee/icon"
	"github.com/marquee-player/marquee/progress"
	"github.com/marquee-player/marquee/style"
	"github.com/marquee-player/marquee/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chaptersCmd)

	chaptersCmd.AddCommand(chaptersListCmd)
	addChapterFlags(chaptersListCmd)
	chaptersListCmd.Flags().BoolP("json", "j", false, "Print chapters as JSON")
	chaptersListCmd.SetOut(os.Stdout)

	chaptersCmd.AddCommand(chaptersFindCmd)
	addChapterFlags(chaptersFindCmd)
	chaptersFindCmd.SetOut(os.Stdout)

	chaptersCmd.AddCommand(chaptersSchemaCmd)
	chaptersSchemaCmd.SetOut(os.Stdout)
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "Inspect chapter documents",
}

var chaptersListCmd = &cobra.Command{
	Use:     "list [url]",
	Short:   "List the chapters resolved for a file or stream",
	Args:    cobra.ExactArgs(1),
	Example: "  marquee chapters list ./lecture.mkv\n  marquee chapters list episode.mkv --mal-id 5114 --episode 3 --aniskip",
	Run: func(cmd *cobra.Command, args []string) {
		chapters, err := loadChapters(cmd, args[0])
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			if chapters == nil {
				chapters = []progress.Chapter{}
			}
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(chapters))
			return
		}

		if len(chapters) == 0 {
			cmd.Printf("%s no chapters for %s\n", icon.Get(icon.Fail), args[0])
			return
		}

		for i, c := range chapters {
			cmd.Printf(
				"%s %s %s\n",
				style.Faint(fmt.Sprintf("%2d", i+1)),
				style.Fg(color.Yellow)(util.FormatSeconds(c.Start)),
				c.Title,
			)
		}
	},
}

var chaptersFindCmd = &cobra.Command{
	Use:   "find [url] [query]",
	Short: "Find the chapter whose title best matches a query",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		chapters, err := loadChapters(cmd, args[0])
		handleErr(err)

		chapter, ok := progress.FindChapter(chapters, args[1]).Get()
		if !ok {
			handleErr(fmt.Errorf("no chapter matches %q", args[1]))
		}

		cmd.Printf("%s %s\n", style.Fg(color.Yellow)(util.FormatSeconds(chapter.Start)), chapter.Title)
	},
}

var chaptersSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of chapter documents",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := json.MarshalIndent(progress.ChapterSchema(), "", "  ")
		handleErr(err)
		cmd.Println(string(data))
	},
}
