package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Linattendu/projet-moteur-recherche/config"
	apperrors "github.com/Linattendu/projet-moteur-recherche/internal/errors"
	"github.com/Linattendu/projet-moteur-recherche/internal/ingest"
	"github.com/Linattendu/projet-moteur-recherche/model"
)

func ingestCommand(c *cli.Context) error {
	csvPath, jsonPath := c.String("csv"), c.String("json")
	if (csvPath == "") == (jsonPath == "") {
		return fmt.Errorf("exactly one of --csv or --json is required")
	}
	if c.Int("min-words") <= 0 {
		return fmt.Errorf("min-words must be greater than 0")
	}
	cfg, err := commandConfig(c)
	if err != nil {
		return err
	}

	docs, err := readDocuments(csvPath, jsonPath, c.Int("min-words"))
	if err != nil {
		return err
	}

	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	name := c.String("corpus")
	err = eng.CreateCorpus(name, config.IndexSettings{})
	if err != nil && !errors.Is(err, apperrors.ErrCorpusAlreadyExists) {
		return fmt.Errorf("failed to create corpus: %w", err)
	}

	result, err := eng.AddDocuments(name, docs)
	if err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	if err := eng.BuildIndex(name); err != nil {
		return fmt.Errorf("failed to build index: %w", err)
	}

	info, err := eng.CorpusInfo(name)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Corpus %s: %d inserted, %d duplicates, %d documents, %d terms\n",
		name, len(result.Inserted), len(result.Duplicates), info.Documents, info.Terms)
	return nil
}

func readDocuments(csvPath, jsonPath string, minWords int) ([]model.Document, error) {
	path := jsonPath
	if csvPath != "" {
		path = csvPath
	}
	f, err := os.Open(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var docs []model.Document
	if csvPath != "" {
		docs, err = ingest.ReadSpeechCSV(f, ingest.SpeechOptions{MinWords: minWords, Logger: slog.Default()})
	} else {
		docs, err = ingest.ReadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return docs, nil
}
