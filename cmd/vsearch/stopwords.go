package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStopWordsCmd(root *rootOptions) *cobra.Command {
	var count bool
	cmd := &cobra.Command{
		Use:   "stopwords",
		Short: "List the stop words a search would use",
		Long: `List the stop words a search would use, sorted, one per line. The empty
token is shown as "".

Examples:
  # Default list
  vsearch stopwords --count

  # Default list extended by a file
  vsearch stopwords --stopwords extra.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stop, err := root.stopWords()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if count {
				_, err := fmt.Fprintln(out, stop.Len())
				return err
			}
			for _, w := range stop.Words() {
				if w == "" {
					w = strconv.Quote(w)
				}
				if _, err := fmt.Fprintln(out, w); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&count, "count", false, "print only the number of stop words")
	return cmd
}
