package service

import (
	"errors"
	"sort"

	"archipelago-scent/internal/domain"
)

var (
	ErrNoMatchingAnswers = errors.New("no valid answers")
)

// ScoreAnswers tallies option weights per island for every answer label.
// A label is compared with every option of every question, so repeated option
// texts contribute once per occurrence. The winner is the first island, in the
// order islands were first credited, holding the strictly highest score.
func ScoreAnswers(quiz *domain.Quiz, answers []string) (string, map[string]int, error) {
	scores := make(map[string]int)
	var seen []string

	for _, answer := range answers {
		for _, question := range quiz.Questions {
			for _, option := range question.Options {
				if option.Text != answer {
					continue
				}
				for _, islandID := range sortedIslandIDs(option.IslandWeights) {
					if _, ok := scores[islandID]; !ok {
						seen = append(seen, islandID)
					}
					scores[islandID] += option.IslandWeights[islandID]
				}
			}
		}
	}

	if len(seen) == 0 {
		return "", nil, ErrNoMatchingAnswers
	}

	winner := seen[0]
	for _, islandID := range seen[1:] {
		if scores[islandID] > scores[winner] {
			winner = islandID
		}
	}

	return winner, scores, nil
}

func sortedIslandIDs(weights map[string]int) []string {
	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
