package commands

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openBrowser launches url in the user's default browser. The command
// is started, not waited on; the browser outlives the call.
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}

	return cmd.Start()
}
