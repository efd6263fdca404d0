package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/folio/config"
	"github.com/use-agent/folio/llm"
	"github.com/use-agent/folio/models"
)

var (
	scrapeMode    string
	scrapeSave    bool
	scrapeCompact bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Scrape one portfolio and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Scrape one portfolio and print a design and content critique",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	for _, c := range []*cobra.Command{scrapeCmd, analyzeCmd} {
		c.Flags().StringVar(&scrapeMode, "mode", "", "Fetch mode: browser, http or auto (overrides FOLIO_FETCH_MODE)")
		c.Flags().BoolVar(&scrapeCompact, "compact", false, "Print JSON on one line")
	}
	scrapeCmd.Flags().BoolVar(&scrapeSave, "save", false, "Store the snapshot when FOLIO_MONGO_URI is set")
	rootCmd.AddCommand(scrapeCmd, analyzeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if !scrapeSave {
		cfg.Mongo.URI = ""
	}
	cfg.LLM.APIKey = ""

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.scraper.ScrapePortfolioWith(cmd.Context(), args[0], scrapeMode)
	if err != nil {
		return err
	}

	out := &models.ScrapeResponse{Success: true, Data: result}
	if a.deps.Store != nil {
		snap, err := a.deps.Store.SaveSnapshot(cmd.Context(), result)
		if err != nil {
			slog.Warn("snapshot save failed", "url", result.URL, "error", err)
		} else {
			out.Changes = &models.ChangeInfo{
				SnapshotID:       snap.ID,
				PreviousID:       snap.PreviousID,
				ContentChanged:   snap.ContentChanged,
				StructureChanged: snap.StructureChanged,
			}
		}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	cfg.Mongo.URI = ""
	if !cfg.LLM.Enabled() {
		return fmt.Errorf("API key required: set FOLIO_LLM_API_KEY or GROQ_API_KEY")
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.deps.LLM == nil {
		return fmt.Errorf("language model %q could not be initialised", cfg.LLM.Provider)
	}

	result, err := a.scraper.ScrapePortfolioWith(cmd.Context(), args[0], scrapeMode)
	if err != nil {
		return err
	}
	digest := a.deps.Digester.Digest(result.RawHTML, result.URL, 1500).Markdown

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLM.Timeout+5*time.Second)
	defer cancel()
	analysis, err := a.deps.LLM.Generate(ctx, llm.AnalysisPrompt(result, digest), llm.AnalysisMaxTokens)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), &models.AnalyzeResponse{
		Success:        true,
		CurrentStyle:   llm.CurrentStyle(result),
		ContentSummary: llm.ContentSummary(result),
		Analysis:       analysis,
		Data:           result,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if !scrapeCompact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
