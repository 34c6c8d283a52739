package main

import (
	"fmt"
	"strings"
	"time"

	"discharge-assistant-be/internal/bootstrap"
	"discharge-assistant-be/internal/config"
	"discharge-assistant-be/internal/pkg/serverutils"
	"discharge-assistant-be/internal/service"

	"github.com/spf13/cobra"
)

// withCore loads config and the CLI container, closing it after fn.
func withCore(fn func(cfg *config.Config, c *bootstrap.Container) error) error {
	cfg := config.Load()
	c, err := bootstrap.NewCoreContainer(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(cfg, c)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Chunk, embed and index the reference document",
	Long: `Chunk, embed and index the reference document.

Ingestion is skipped when the collection already exists, even if it
holds no chunks.

Examples:
  assistantctl ingest
  assistantctl ingest data/nephrology_book.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(func(cfg *config.Config, c *bootstrap.Container) error {
			path := cfg.Data.SourceDocPath
			if len(args) == 1 {
				path = args[0]
			}

			report, err := c.Retriever.Ingest(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("ingesting %s: %w", path, err)
			}
			if report.Skipped {
				printWarning("collection %s already populated, nothing to do", report.Collection)
				return nil
			}
			printSuccess("indexed %d chunks into %s", report.Chunks, report.Collection)
			printField("source", "%s", report.SourcePath)
			printField("extraction", "%s", report.ExtractionMethod)
			printField("duration", "%s", report.Duration.Round(time.Millisecond))
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a similarity search against the vector index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topK, _ := cmd.Flags().GetInt("top-k")
		query := strings.Join(args, " ")

		return withCore(func(cfg *config.Config, c *bootstrap.Container) error {
			res := c.Retriever.Search(cmd.Context(), query, topK)
			if res.Degraded() {
				return fmt.Errorf("search failed: %w", res.Err)
			}
			if len(res.Value) == 0 {
				printWarning("no results (is the index populated?)")
				return nil
			}
			for i, r := range res.Value {
				printHeading(fmt.Sprintf("[%d] %s chunk %d (distance %.4f)", i+1, r.Source, r.ChunkIndex, r.Distance))
				fmt.Fprintln(out, r.Content)
				fmt.Fprintln(out)
			}
			return nil
		})
	},
}

var patientsCmd = &cobra.Command{
	Use:   "patients",
	Short: "List loaded patient discharge records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(func(cfg *config.Config, c *bootstrap.Container) error {
			list := c.PatientService.ListPatients()
			if len(list) == 0 {
				printWarning("no patients loaded from %s", cfg.Data.PatientsPath)
				return nil
			}
			printHeading(fmt.Sprintf("%d patients", len(list)))
			for _, p := range list {
				fmt.Fprintf(out, "  %-28s %-40s %s\n", p.Name, p.Diagnosis, p.DischargeDate)
			}
			return nil
		})
	},
}

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Look up a patient by name the way the receptionist does",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return withCore(func(cfg *config.Config, c *bootstrap.Container) error {
			patient, kind := c.PatientService.FindByName(name)
			if kind == service.MatchNone {
				return fmt.Errorf("no patient matches %q", name)
			}
			printSuccess("%s match: %s", kind, patient.PatientName)
			fmt.Fprintln(out, c.PatientService.FormatSummary(patient))
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vector index state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(func(cfg *config.Config, c *bootstrap.Container) error {
			stats, err := c.Retriever.Stats(cmd.Context())
			if err != nil {
				return err
			}
			printHeading("Vector index")
			printField("store", "%s", cfg.Data.VectorStore)
			printField("collection", "%s", stats.Collection)
			printField("state", "%s", stats.State)
			printField("chunks", "%d", stats.Chunks)
			return nil
		})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <operator>",
	Short: "Issue a bearer token for the admin API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetDuration("ttl")
		cfg := config.Load()

		token, err := serverutils.IssueToken(cfg.Security.JWTSecret, args[0], ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, token)
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("top-k", 3, "number of chunks to return")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
}
