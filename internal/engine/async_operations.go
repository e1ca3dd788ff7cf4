package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Linattendu/projet-moteur-recherche/model"
)

// BuildIndexAsync starts BuildIndex as a background job and returns its ID.
func (e *Engine) BuildIndexAsync(name string) (string, error) {
	inst, err := e.instance(name)
	if err != nil {
		return "", err
	}

	jobID, err := e.jobManager.Submit(model.JobTypeBuildIndex, name, map[string]string{
		"documents": strconv.Itoa(inst.corpus.Len()),
	}, func(ctx context.Context, job *model.Job) error {
		return e.buildIndex(ctx, name, func(step, total int, message string) {
			e.jobManager.UpdateJobProgress(job.ID, step, total, message)
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to start build index job: %w", err)
	}
	return jobID, nil
}

// AddDocumentsAsync inserts docs in a background job, optionally
// rebuilding the index afterwards.
func (e *Engine) AddDocumentsAsync(name string, docs []model.Document, build bool) (string, error) {
	if _, err := e.instance(name); err != nil {
		return "", err
	}

	jobID, err := e.jobManager.Submit(model.JobTypeIngest, name, map[string]string{
		"documents": strconv.Itoa(len(docs)),
		"build":     strconv.FormatBool(build),
	}, func(ctx context.Context, job *model.Job) error {
		e.jobManager.UpdateJobProgress(job.ID, 0, len(docs), "adding documents")
		result, err := e.AddDocuments(name, docs)
		if err != nil {
			return err
		}
		e.jobManager.UpdateJobProgress(job.ID, len(docs), len(docs),
			fmt.Sprintf("%d inserted, %d duplicates", len(result.Inserted), len(result.Duplicates)))
		if !build {
			return nil
		}
		return e.buildIndex(ctx, name, nil)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start ingest job: %w", err)
	}
	return jobID, nil
}

// PersistCorpusAsync runs PersistCorpus as a background job.
func (e *Engine) PersistCorpusAsync(name string) (string, error) {
	if _, err := e.instance(name); err != nil {
		return "", err
	}

	jobID, err := e.jobManager.Submit(model.JobTypePersist, name, nil, func(ctx context.Context, job *model.Job) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return e.PersistCorpus(name)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start persist job: %w", err)
	}
	return jobID, nil
}
