package model

// ScoreRow is one school's line in the ranked table. Scores is keyed by
// dimension name; every value lies in [1.0, 5.0].
type ScoreRow struct {
	School  string             `json:"school"`
	Slug    string             `json:"slug"`
	Scores  map[string]float64 `json:"scores"`
	Overall float64            `json:"overall"` // weighted sum, rounded to 2 decimals
}

// Outcome records the result of one unit of batch work. Unit names what was
// attempted for the school: a dimension for ledger runs, "evidence" or
// "score" for the later stages.
type Outcome struct {
	School string
	Unit   string
	Err    error
}

// Failed reports whether the unit ended in an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// CountFailures returns how many outcomes failed.
func CountFailures(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}
