package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v2"

	"github.com/Linattendu/projet-moteur-recherche/api"
	"github.com/Linattendu/projet-moteur-recherche/services"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	snippetStyle = lipgloss.NewStyle().PaddingLeft(2)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
)

func searchCommand(c *cli.Context) error {
	query, result := api.ValidateSearchRequest(api.SearchRequest{
		Query:    c.String("query"),
		Limit:    c.Int("limit"),
		Author:   c.String("author"),
		DateFrom: c.String("from"),
		DateTo:   c.String("to"),
	})
	if result.HasErrors() {
		problems := make([]string, len(result.Errors))
		for i, e := range result.Errors {
			problems[i] = e.Field + ": " + e.Message
		}
		return fmt.Errorf("invalid search: %s", strings.Join(problems, "; "))
	}
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}

	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	res, err := eng.Search(c.String("corpus"), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResult(c.App.Writer, res)
	return nil
}

// printResult renders hits for a terminal.
func printResult(w io.Writer, res services.SearchResult) {
	if len(res.Unknown) > 0 {
		fmt.Fprintln(w, warnStyle.Render("Unknown terms: "+strings.Join(res.Unknown, ", ")))
		for _, term := range res.Unknown {
			if alts := res.Suggestions[term]; len(alts) > 0 {
				fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("  %s: did you mean %s?", term, strings.Join(alts, ", "))))
			}
		}
	}
	if len(res.Hits) == 0 {
		fmt.Fprintln(w, "No documents found.")
		return
	}

	for i, hit := range res.Hits {
		fmt.Fprintf(w, "%d. %s\n", i+1, titleStyle.Render(hit.Title))
		meta := fmt.Sprintf("%s | %s | score %.4f | %s",
			hit.Author, hit.PublishedAt.Format("2006-01-02"), hit.Score, hit.URL)
		fmt.Fprintln(w, "   "+metaStyle.Render(meta))
		fmt.Fprintln(w, snippetStyle.Render(hit.Snippet))
	}
	fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("%d of %d matches in %d ms", len(res.Hits), res.Total, res.Took)))
}
