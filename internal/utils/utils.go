package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type InputUtils struct {
	In  io.Reader
	Out io.Writer
}

func (i *InputUtils) reader() *bufio.Reader {
	if i.In == nil {
		return bufio.NewReader(os.Stdin)
	}
	return bufio.NewReader(i.In)
}

func (i *InputUtils) writer() io.Writer {
	if i.Out == nil {
		return os.Stdout
	}
	return i.Out
}

// GetUserChoice prompts user for choice from valid options
func (i *InputUtils) GetUserChoice(validOptions []string, prompt string, force bool) string {
	if force {
		return validOptions[0]
	}

	reader := i.reader()
	for {
		fmt.Fprintf(i.writer(), "%s (%s): ", prompt, strings.Join(validOptions, "/"))
		input, err := reader.ReadString('\n')
		choice := strings.TrimSpace(strings.ToLower(input))

		for _, option := range validOptions {
			if choice == option {
				return choice
			}
		}
		if err != nil {
			return validOptions[len(validOptions)-1]
		}
		fmt.Fprintf(i.writer(), "Invalid option. Please choose from: %s\n", strings.Join(validOptions, ", "))
	}
}

// AskConfirmation asks user for yes/no confirmation
func (i *InputUtils) AskConfirmation(message string, force bool) bool {
	if force {
		return true
	}
	fmt.Fprintf(i.writer(), "%s (y/N): ", message)
	input, _ := i.reader().ReadString('\n')
	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes"
}
