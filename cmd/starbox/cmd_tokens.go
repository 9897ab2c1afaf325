package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hypersoft/nanostarbox/grammar"
)

func newTokensCmd() *cobra.Command {
	var file string
	var grammarPath string

	cmd := &cobra.Command{
		Use:   "tokens [text]",
		Short: "Tokenize text with an EBNF grammar",
		RunE: func(cmd *cobra.Command, args []string) error {
			if grammarPath == "" {
				grammarPath = config.grammar
			}
			if grammarPath == "" {
				return fmt.Errorf("no grammar: pass --grammar or set one in the config file")
			}

			g, err := grammar.LoadGrammar(grammarPath)
			if err != nil {
				return err
			}

			s, err := openInput(file, args)
			if err != nil {
				return err
			}
			defer s.Close()

			tokens, err := grammar.NewLexer(g, s).Tokenize()
			if err != nil {
				return err
			}
			if err := s.Err(); err != nil {
				return err
			}
			log.Debugf("tokenized %d tokens from %s", len(tokens), s.Path())

			for _, token := range tokens {
				fmt.Println(token)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read input from a file")
	cmd.Flags().StringVarP(&grammarPath, "grammar", "g", "", "path to an EBNF grammar file")

	return cmd
}
