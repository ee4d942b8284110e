package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

const chatBanner = `Laravel Docs Assistant
Ask anything about Laravel. Type "help" for commands, "quit" to exit.`

const chatHelp = `Commands:
  help      show this help
  tools     list the available search tools
  history   show this session's conversation
  clear     forget this session's conversation
  quit      exit`

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			a.Logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	sessionID := uuid.NewString()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, chatBanner)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit":
			fmt.Fprintln(out, "Bye!")
			return nil
		case "help":
			fmt.Fprintln(out, chatHelp)
			continue
		case "tools":
			for _, t := range a.Orchestrator.Tools() {
				fmt.Fprintf(out, "  %-22s %s\n", t.Name(), t.Description())
			}
			continue
		case "history":
			turns := a.Orchestrator.Sessions().Get(sessionID).Turns()
			if len(turns) == 0 {
				fmt.Fprintln(out, "No conversation yet.")
				continue
			}
			for _, t := range turns {
				fmt.Fprintf(out, "You: %s\nAssistant: %s\n\n", t.Question, t.Answer)
			}
			continue
		case "clear":
			a.Orchestrator.Sessions().Get(sessionID).Clear()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		result, err := a.Orchestrator.Answer(ctx, sessionID, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out)
				return nil
			}
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "\n%s\n", result.Answer)
		if len(result.ToolsUsed) > 0 {
			fmt.Fprintf(out, "\n(searched with: %s)\n", strings.Join(result.ToolsUsed, ", "))
		}
	}
}
