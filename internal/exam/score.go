package exam

// Result is the outcome of scoring one attempt.
type Result struct {
	Score         float64 `json:"score"`
	CorrectCount  int     `json:"correct_count"`
	AnsweredCount int     `json:"answered_count"`
	SkippedCount  int     `json:"skipped_count"`
}

// Score grades an answer map against a question set. It is pure and
// deterministic: the same (questions, answers) pair always yields the same
// result, and an empty answer map scores 0.0 without error. The question set
// constructor guarantees a non-zero length, so the percentage is never a
// divide-by-zero.
func Score(qs *QuestionSet, answers AnswerMap) Result {
	var r Result
	for i := 0; i < qs.Len(); i++ {
		key, ok := answers[i]
		if !ok {
			continue
		}
		r.AnsweredCount++
		if key == qs.At(i).CorrectKey {
			r.CorrectCount++
		}
	}
	r.SkippedCount = qs.Len() - r.AnsweredCount
	r.Score = float64(r.CorrectCount) / float64(qs.Len()) * 100
	return r
}
