package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

// NewChatCommand creates the chat command.
func NewChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the savings assistant",
		Long: `Start an interactive session with the water savings assistant.

The assistant answers questions about usage, costs, tariffs and saving
habits using the current simulation state and manual entries.`,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg := GetConfig(cmd.Context())

	eng, cleanup, err := openEngine(cfg, GetLogger(cmd.Context()))
	if err != nil {
		return err
	}
	defer cleanup()

	historyFile := filepath.Join(filepath.Dir(cfg.DatabasePath), ".aquameter_chat_history")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "aquameter> ",
		HistoryFile:     historyFile,
		AutoComplete:    chatCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize chat: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aquameter savings assistant")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Ask about usage, costs or saving tips. Type .quit to exit.")
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleChatDotCommand(cmd, line); quit {
				break
			}
			continue
		}

		response, err := eng.Chat(line)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			continue
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), response)
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

func handleChatDotCommand(cmd *cobra.Command, line string) (quit bool) {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ".quit", ".exit":
		return true
	case ".help":
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), `
Commands:
  .help           Show this help message
  .clear          Clear the screen
  .quit / .exit   Exit the chat

Try asking:
  how am I doing?
  how much will my bill be?
  give me savings tips
  when is the night tariff?`)
		return false
	case ".clear":
		fmt.Print("\033[H\033[2J")
		return false
	default:
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", line)
		return false
	}
}

func chatCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("how"),
		readline.PcItem("savings"),
		readline.PcItem("bill"),
		readline.PcItem("night"),
		readline.PcItem("goal"),
		readline.PcItem(".help"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
