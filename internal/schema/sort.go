package schema

import (
	"db2graph/internal/logger"
	"db2graph/internal/metadata"
)

// SortTablesByFKCount sorts tables by dependency order: referenced tables first.
// It handles circular dependencies by using a scoring system. Dependencies on tables
// outside the given set are ignored.
func SortTablesByFKCount(tables []*metadata.Table) []*metadata.Table {
	inSet := make(map[metadata.TableName]bool, len(tables))
	for _, t := range tables {
		inSet[t.Name()] = true
	}
	deps := make(map[metadata.TableName][]metadata.TableName, len(tables))
	for _, t := range tables {
		for _, dep := range t.Dependencies() {
			if inSet[dep] {
				deps[t.Name()] = append(deps[t.Name()], dep)
			}
		}
	}

	var sorted []*metadata.Table
	processed := make(map[metadata.TableName]bool)

	// Keep looping until all tables are processed
	for len(sorted) < len(tables) {
		added := false

		// Pass 1: Add tables whose dependencies are fully satisfied
		for _, t := range tables {
			if processed[t.Name()] {
				continue
			}

			allDepsProcessed := true
			for _, dep := range deps[t.Name()] {
				if !processed[dep] {
					allDepsProcessed = false
					break
				}
			}

			if allDepsProcessed {
				sorted = append(sorted, t)
				processed[t.Name()] = true
				added = true
			}
		}

		// Pass 2: If no table added, we have a cycle. Break it using heuristic score.
		if !added {
			var bestTable *metadata.Table
			bestScore := -999999

			for _, t := range tables {
				if processed[t.Name()] {
					continue
				}

				// Penalty: unprocessed dependencies. Bonus: taking part in a two-table cycle.
				score := 0
				for _, dep := range deps[t.Name()] {
					if !processed[dep] {
						score -= 100
					}
				}
				if isCircular(t.Name(), deps, processed) {
					score += 500
				}

				// Tie-breaker: Name (Deterministic)
				if bestTable == nil || score > bestScore || (score == bestScore && t.Name().FullName() > bestTable.Name().FullName()) {
					bestScore = score
					bestTable = t
				}
			}

			sorted = append(sorted, bestTable)
			processed[bestTable.Name()] = true
			logger.Debugf("[Sort] Breaking circular dependency: %s (Score: %d)", bestTable.Name(), bestScore)
		}
	}

	return sorted
}

// isCircular reports whether one of name's pending dependencies depends on name.
func isCircular(name metadata.TableName, deps map[metadata.TableName][]metadata.TableName, processed map[metadata.TableName]bool) bool {
	for _, dep := range deps[name] {
		if processed[dep] {
			continue
		}
		for _, back := range deps[dep] {
			if back == name {
				return true
			}
		}
	}
	return false
}
