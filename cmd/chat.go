package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptlab/aoai/internal/azureai"
	"github.com/promptlab/aoai/internal/output"
)

var (
	chatSystem    string
	chatMaxTokens int
)

var chatCmd = &cobra.Command{
	Use:   "chat [prompt]",
	Short: "Send a prompt to the configured deployment",
	Long: `Send a single prompt to the configured Azure OpenAI deployment and
print the reply. The prompt is taken from the arguments, or read from
stdin when no argument is given.

Sampling is deterministic (temperature 0), so identical prompts against
the same deployment produce stable output.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return chatRun(cmd.Context(), args, os.Stdin)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSystem, "system", "", "System prompt")
	chatCmd.Flags().IntVar(&chatMaxTokens, "max-tokens", 1024, "Completion token limit")
	rootCmd.AddCommand(chatCmd)
}

func chatRun(ctx context.Context, args []string, stdin io.Reader) error {
	prompt, err := readPrompt(args, stdin)
	if err != nil {
		return err
	}

	client, err := azureai.FromEnv()
	if err != nil {
		var missing *azureai.MissingVarsError
		if errors.As(err, &missing) {
			return fmt.Errorf("%w (run 'aoai config' for details)", err)
		}
		return err
	}

	ui.VerboseLog("deployment: %s", client.Deployment())
	ui.VerboseLog("prompt: %d characters", len(prompt))

	if dryRun {
		ui.DryRunMsg("Would send prompt to deployment %s", output.Cyan(client.Deployment()))
		return nil
	}

	reply, err := client.Complete(ctx, chatSystem, prompt, chatMaxTokens)
	if err != nil {
		return err
	}

	fmt.Fprintln(ui.Out, reply)
	return nil
}

// readPrompt assembles the prompt from args, falling back to stdin.
func readPrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("empty prompt: pass it as an argument or pipe it on stdin")
	}
	return prompt, nil
}
