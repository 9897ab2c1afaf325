package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExpandCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "expand [text]",
		Short: "Expand backslash escape sequences in text",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openInput(file, args)
			if err != nil {
				return err
			}
			defer s.Close()

			log.Debugf("expanding escapes from %s", s.Path())
			expanded, err := s.NextBoundField("")
			if err != nil {
				return err
			}
			if err := s.Err(); err != nil {
				return err
			}
			fmt.Println(expanded)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read input from a file")

	return cmd
}
