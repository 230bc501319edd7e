package cmd

import (
	"fmt"
	"io"
	"os"
)

const banner = `
    _         _              _
   / \  _   _| |_ ___   ___ | |___  ___
  / _ \| | | | __/ _ \ / _ \| / __|/ _ \
 / ___ \ |_| | || (_) | (_) | \__ \  __/
/_/   \_\__,_|\__\___/ \___/|_|___/\___|
`

func printBanner(w io.Writer) {
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		fmt.Fprint(w, "\033[94m"+banner+"\033[0m\n")
		return
	}
	fmt.Fprint(w, banner+"\n")
}
