package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spigell/resume-screener/internal/classify"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [evaluation text]",
	Short: "Print the recommendation for an evaluation text (reads stdin when no text is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := evaluationText(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), classify.Recommend(text))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func evaluationText(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading evaluation from stdin: %w", err)
	}
	return string(data), nil
}
