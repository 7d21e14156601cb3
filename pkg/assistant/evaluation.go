package assistant

import (
	"math"
	"strings"
	"unicode"
)

type QuizScore struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

// ScoreQuiz compares answers pairwise with truth. Total is len(truth); extra
// answers are ignored and missing ones count as wrong.
func ScoreQuiz(answers, truth []int) QuizScore {
	correct := 0
	for i := 0; i < len(answers) && i < len(truth); i++ {
		if answers[i] == truth[i] {
			correct++
		}
	}

	score := QuizScore{Correct: correct, Total: len(truth)}
	if score.Total > 0 {
		score.Accuracy = round(float64(correct)/float64(score.Total), 3)
	}
	return score
}

type RougeScores struct {
	Rouge1 float64 `json:"rouge1"`
	RougeL float64 `json:"rougeL"`
}

// Rouge returns unigram and longest-common-subsequence F-measures of
// candidate against reference, rounded to four places.
func Rouge(reference, candidate string) RougeScores {
	ref := rougeTokens(reference)
	cand := rougeTokens(candidate)
	if len(ref) == 0 || len(cand) == 0 {
		return RougeScores{}
	}

	return RougeScores{
		Rouge1: round(fMeasure(unigramOverlap(ref, cand), len(ref), len(cand)), 4),
		RougeL: round(fMeasure(lcsLength(ref, cand), len(ref), len(cand)), 4),
	}
}

// rougeTokens lower-cases text and splits it on anything that is not a letter or digit.
func rougeTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r))
	})
}

func unigramOverlap(ref, cand []string) int {
	counts := make(map[string]int, len(ref))
	for _, token := range ref {
		counts[token]++
	}
	overlap := 0
	for _, token := range cand {
		if counts[token] > 0 {
			counts[token]--
			overlap++
		}
	}
	return overlap
}

func lcsLength(a, b []string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func fMeasure(hits, refLen, candLen int) float64 {
	precision := float64(hits) / float64(candLen)
	recall := float64(hits) / float64(refLen)
	if precision+recall == 0 {
		return 0
	}
	return 2 * precision * recall / (precision + recall)
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
