package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/hypersoft/nanostarbox/scanner"
)

// settings carries the optional YAML configuration: per-character
// translation overrides used in error rendering, and a default grammar
// file for the tokens command.
type settings struct {
	translations map[rune]string
	grammar      string
}

var config settings

func loadConfig(path string) error {
	if path == "" {
		return nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	config.grammar = v.GetString("grammar")
	config.translations = make(map[rune]string)
	for key, label := range v.GetStringMapString("translations") {
		runes := []rune(key)
		if len(runes) != 1 {
			return fmt.Errorf("config translations: key %q must be a single character", key)
		}
		config.translations[runes[0]] = label
	}
	log.Debugf("loaded config from %s (%d translations)", path, len(config.translations))
	return nil
}

func scannerOptions() []scanner.Option {
	var opts []scanner.Option
	if len(config.translations) > 0 {
		opts = append(opts, scanner.WithTranslations(config.translations))
	}
	return opts
}

// openInput builds a scanner reading from a file when file is set, the
// joined arguments when given, and stdin otherwise.
func openInput(file string, args []string) (*scanner.Scanner, error) {
	switch {
	case file != "":
		return scanner.Open(file, scannerOptions()...)
	case len(args) > 0:
		return scanner.ForString("argument", strings.Join(args, " "), scannerOptions()...), nil
	default:
		return scanner.ForReader("stdin", os.Stdin, scannerOptions()...), nil
	}
}
