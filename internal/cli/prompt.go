package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// queryYesNo asks a yes/no question on the terminal. Defaults to no, so
// just hitting enter never overwrites anything.
func queryYesNo(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("%s [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "n", "no":
			return false
		case "y", "yes":
			return true
		default:
			fmt.Println("Please respond with 'yes' or 'no' (or 'y' or 'n').")
		}
	}
}
