package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"catalogstudio/internal/catalog"
	"catalogstudio/internal/domain"
	"catalogstudio/internal/fields"
	"catalogstudio/internal/infra"
	"catalogstudio/internal/infra/credentials"
	"catalogstudio/internal/middleware"
	"catalogstudio/internal/products"
	"catalogstudio/internal/providers/llm"
	"catalogstudio/internal/rules"
	"catalogstudio/internal/storage"
	"catalogstudio/internal/validation"
)

var errCheckFailed = errors.New("content did not pass")

func (f *rootFlags) lang() string {
	return middleware.NormalizeLanguage(f.language, domain.DefaultLanguage)
}

func (f *rootFlags) loadFields() ([]domain.FieldConfig, error) {
	if f.fieldsPath == "" {
		return fields.DefaultFields()
	}
	return fields.LoadFile(f.fieldsPath)
}

func (f *rootFlags) loadCatalog() (*catalog.Catalog, error) {
	if f.catalogPath == "" {
		return nil, errors.New("--catalog or CATALOG_PATH is required")
	}
	return catalog.LoadFile(f.catalogPath)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCategoriesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category names of a catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := flags.loadCatalog()
			if err != nil {
				return err
			}
			for _, name := range catalog.ExtractCategoryNames(cat) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// newCheckCmd runs the deterministic format and list checks without a
// language model.
func newCheckCmd(flags *rootFlags) *cobra.Command {
	var field, category string
	cmd := &cobra.Command{
		Use:   "check <value>",
		Short: "Check a value against the format rules of a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := flags.loadFields()
			if err != nil {
				return err
			}
			applicable := rules.SelectApplicable(rules.MatchNameFold(all, field), category)
			if len(applicable) == 0 {
				return fmt.Errorf("no active configuration for field %q", field)
			}
			res := validation.CheckRules(rules.Resolve(applicable[0], flags.lang()), args[0])
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Passed {
				return errCheckFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&field, "field", "f", "", "field name")
	cmd.Flags().StringVar(&category, "category", "", "product category used to pick the configuration")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

// newValidateCmd runs the full validation of one product field, including
// the language model judgment.
func newValidateCmd(flags *rootFlags) *cobra.Command {
	var code, field string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate one field of a catalog product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := flags.loadCatalog()
			if err != nil {
				return err
			}
			configs, err := flags.loadFields()
			if err != nil {
				return err
			}
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			logger := infra.NewLoggerTo(cmd.ErrOrStderr(), "cli", os.Getenv("LOG_LEVEL")).With().Str("cmd", "catalogctl").Logger()
			store, err := products.New(storage.NewMemoryStore(), cat, products.Options{Logger: &logger})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			product, err := store.GetProductData(ctx, code)
			if err != nil {
				return err
			}
			completer, err := llm.NewCompleter(llm.Settings{
				Provider:           cfg.PromptProvider,
				FallbackProvider:   cfg.FallbackProvider,
				OpenAIAPIKey:       cfg.OpenAIAPIKey,
				OpenAIModel:        cfg.OpenAIModel,
				OpenAIBaseURL:      cfg.OpenAIBaseURL,
				OpenAIOrganization: cfg.OpenAIOrg,
				GeminiAPIKey:       cfg.GeminiAPIKey,
				GeminiModel:        cfg.GeminiModel,
				GeminiBaseURL:      cfg.GeminiBaseURL,
				HTTPClient:         &http.Client{Timeout: cfg.LLMTimeout},
				Logger:             &logger,
			})
			if err != nil {
				return err
			}
			engine := validation.NewEngine(validation.Options{
				Judge:  llm.NewClient(llm.ClientOptions{Completer: completer, Timeout: cfg.LLMTimeout, Logger: &logger}),
				Logger: &logger,
			})
			res := engine.ValidateContent(ctx, product, field, configs, flags.lang(), nil)
			if err := printJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Passed {
				return errCheckFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&code, "product", "p", "", "product code")
	cmd.Flags().StringVarP(&field, "field", "f", "", "field name, mediaCount or mediaAsset_<id>")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func newSetKeyCmd() *cobra.Command {
	var provider, key string
	var remove bool
	cmd := &cobra.Command{
		Use:   "set-key",
		Short: "Store a provider API key in postgres",
		Long:  "Store a provider API key in postgres. Without --key the provider's environment variable is used. --clear removes the stored key.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider = strings.ToLower(strings.TrimSpace(provider))
			source := "flag"
			key = strings.TrimSpace(key)
			if key == "" && !remove {
				key = strings.TrimSpace(os.Getenv(strings.ToUpper(provider) + "_API_KEY"))
				source = "env"
			}
			dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
			if dbURL == "" {
				return errors.New("DATABASE_URL is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			pool, err := pgxpool.New(ctx, dbURL)
			if err != nil {
				return fmt.Errorf("create pool: %w", err)
			}
			defer pool.Close()

			logger := infra.NewLoggerTo(cmd.ErrOrStderr(), "cli", os.Getenv("LOG_LEVEL")).With().Str("cmd", "catalogctl").Str("provider", provider).Logger()
			store := credentials.NewStore(infra.NewSQLRunner(pool, logger))
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if remove {
				removed, err := store.Remove(ctx, provider)
				if err != nil {
					return fmt.Errorf("remove %s api key: %w", provider, err)
				}
				if !removed {
					fmt.Fprintf(out, "no %s API key stored\n", provider)
					return nil
				}
				fmt.Fprintf(out, "%s API key removed\n", strings.ToUpper(provider))
				return nil
			}
			if err := store.Put(ctx, provider, key, "catalogctl:"+source); err != nil {
				return fmt.Errorf("persist %s api key: %w", provider, err)
			}
			cred, _, err := store.Lookup(ctx, provider)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s API key stored (%s)\n", strings.ToUpper(provider), cred.Masked())
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", credentials.ProviderGemini, "provider to configure ("+strings.Join(credentials.Providers, " or ")+")")
	cmd.Flags().StringVar(&key, "key", "", "API key, defaults to <PROVIDER>_API_KEY")
	cmd.Flags().BoolVar(&remove, "clear", false, "remove the stored key instead")
	return cmd
}
