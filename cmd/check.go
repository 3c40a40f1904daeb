package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/marquee-player/marquee/icon"
	"github.com/marquee-player/marquee/key"
	"github.com/marquee-player/marquee/style"
	"github.com/spf13/viper"
)

// CheckDependencies exits when the configured mpv binary cannot be found.
func CheckDependencies() {
	binary := viper.GetString(key.Player)
	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependency(binary)
		os.Exit(1)
	}
}

func installHint(binary string) string {
	if filepath.Base(binary) != "mpv" {
		return ""
	}

	switch runtime.GOOS {
	case "darwin":
		return "brew install mpv"
	case "linux":
		return "sudo apt install mpv"
	case "windows":
		return "scoop install mpv"
	default:
		return ""
	}
}

func printMissingDependency(binary string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.ErrorColor).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.ErrorColor).Render(icon.Get(icon.Fail) + " Player not found")
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("%q is not in your PATH. Set %s to the mpv binary to use.", binary, key.Player))

	lines := []string{title, "", body}
	if hint := installHint(binary); hint != "" {
		lines = append(lines, "", "Install it with:", "  "+style.New().Foreground(style.AccentColor).Bold(true).Render(hint))
	}

	fmt.Println(box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
