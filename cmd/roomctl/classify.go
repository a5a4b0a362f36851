package main

import (
	"fmt"
	"strings"

	"github.com/phrazzld/studyrooms-api/internal/classifier"
	"github.com/phrazzld/studyrooms-api/internal/source"
	"github.com/spf13/cobra"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Show how lesson material would be classified",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			res := classifier.Classify(text)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:     %s\n", source.Detect(text))
			fmt.Fprintf(out, "category:   %s\n", res.Category)
			fmt.Fprintf(out, "exam_focus: %s\n", res.ExamFocus)
			return nil
		},
	}
}
