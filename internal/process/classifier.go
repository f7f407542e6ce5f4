package process

import "strings"

// Verdict is a LineClassifier's decision about one line.
type Verdict int

const (
	Continue Verdict = iota
	Match
)

// LineClassifier decides, one line at a time, whether watched output completes a task.
// Returning an error fails the latch with that error.
type LineClassifier interface {
	Classify(line string) (Verdict, error)
}

type ClassifierFunc func(line string) (Verdict, error)

func (f ClassifierFunc) Classify(line string) (Verdict, error) { return f(line) }

// MatchLine is satisfied by the first line equal to want.
func MatchLine(want string) LineClassifier {
	return ClassifierFunc(func(line string) (Verdict, error) {
		if line == want {
			return Match, nil
		}
		return Continue, nil
	})
}

// MatchContaining is satisfied by the first line containing substr.
func MatchContaining(substr string) LineClassifier {
	return ClassifierFunc(func(line string) (Verdict, error) {
		if strings.Contains(line, substr) {
			return Match, nil
		}
		return Continue, nil
	})
}
