package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/akarsten/demodash-go/internal/chat"
	"github.com/akarsten/demodash-go/internal/instructions"
	"github.com/akarsten/demodash-go/internal/llm"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <demo> <assistant> [prompt]",
	Short: "Chat with an assistant from the terminal",
	Long: `Chat with an assistant using its instruction document and the
configured model provider, streaming the reply token by token.

With a prompt argument a single turn is run. Without one an interactive
session starts; the conversation so far is resent on every turn. End the
session with an empty line or Ctrl-D.

Examples:
  demodash chat acme support "How do I reset my password?"
  demodash chat acme support`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	demoID, assistantID := args[0], args[1]
	ctx := context.Background()

	doc, err := instructions.New(cfg.BaseDir).Resolve(demoID, assistantID)
	if err != nil {
		return fmt.Errorf("resolve instructions: %w", err)
	}

	client, err := llm.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("init model client: %w", err)
	}

	if len(args) == 3 {
		_, err := runTurn(ctx, client, doc, nil, args[2])
		return err
	}

	var history []chat.IncomingMessage
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return nil
		}
		prompt := strings.TrimSpace(line)
		if prompt == "" {
			return nil
		}

		history = append(history, chat.IncomingMessage{Role: "user", Content: prompt})
		reply, err := runTurn(ctx, client, doc, history, prompt)
		if err != nil {
			return err
		}
		history = append(history, chat.IncomingMessage{Role: "assistant", Content: reply})
	}
}

// runTurn streams one completion to stdout and returns the full reply text.
func runTurn(ctx context.Context, client llm.Client, doc string, history []chat.IncomingMessage, prompt string) (string, error) {
	stream, err := client.StreamCompletion(ctx, chat.Format(doc, history, prompt))
	if err != nil {
		return "", fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	var reply strings.Builder
	for stream.Next() {
		delta := stream.Current().Delta
		fmt.Print(delta)
		reply.WriteString(delta)
	}
	fmt.Println()

	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("stream reply: %w", err)
	}
	return reply.String(), nil
}
