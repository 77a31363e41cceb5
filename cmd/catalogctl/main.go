// Command catalogctl runs catalog field checks from the shell and manages
// stored provider keys.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	catalogPath string
	fieldsPath  string
	language    string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Check catalog content against field rules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.CompletionOptions.HiddenDefaultCmd = true
	root.PersistentFlags().StringVar(&flags.catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "catalog JSON file")
	root.PersistentFlags().StringVar(&flags.fieldsPath, "fields", os.Getenv("FIELDS_PATH"), "field configuration YAML, defaults to the built-in set")
	root.PersistentFlags().StringVarP(&flags.language, "lang", "l", "EN", "content language (EN, DE or FR)")

	root.AddCommand(
		newCategoriesCmd(flags),
		newCheckCmd(flags),
		newValidateCmd(flags),
		newSetKeyCmd(),
	)
	return root
}
