package commands

import (
	"log/slog"
	"os/exec"
	"runtime"

	"git.home.luguber.info/inful/subscript/internal/logfields"
)

// openBrowser opens url with the platform's default handler.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Warn("cannot open browser", slog.String("url", url), logfields.Error(err))
		return
	}
	go func() { _ = cmd.Wait() }()
}
