package search

import (
	"github.com/Linattendu/projet-moteur-recherche/config"
	"github.com/Linattendu/projet-moteur-recherche/index"
)

// score returns one relevance value per document of the snapshot.
func (s *Service) score(snap *snapshot, qv index.QueryVector) ([]float64, error) {
	scores, err := snap.index.TFIDF().MulVec(qv.Values)
	if err != nil {
		return nil, err
	}
	if s.settings.Scoring != config.ScoringCosine {
		return scores, nil
	}
	return cosine(scores, snap.rowNorms(), qv.Norm()), nil
}

// cosine divides each dot product by both norms in place.
// A zero norm on either side yields 0.
func cosine(dots, rowNorms []float64, queryNorm float64) []float64 {
	for i, dot := range dots {
		if rowNorms[i] == 0 || queryNorm == 0 {
			dots[i] = 0
			continue
		}
		dots[i] = dot / (rowNorms[i] * queryNorm)
	}
	return dots
}
