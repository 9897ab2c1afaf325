package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hypersoft/nanostarbox/params"
	"github.com/hypersoft/nanostarbox/scanner"
)

func newParamsCmd() *cobra.Command {
	var file string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "params [text]",
		Short: "Split text into shell-style parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openInput(file, args)
			if err != nil {
				return err
			}
			defer s.Close()

			list, err := scanner.Parse(params.NewList, s)
			if err != nil {
				return err
			}
			if err := s.Err(); err != nil {
				return err
			}
			log.Debugf("parsed %d parameters from %s", len(list.Values), s.Path())

			if asJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				return encoder.Encode(list.Values)
			}
			for _, value := range list.Values {
				fmt.Println(value)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read input from a file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print parameters as a JSON array")

	return cmd
}
