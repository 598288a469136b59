package stringutils

import "fmt"

// INClause builds the placeholder list and argument slice for a SQL IN clause
// over the given values, e.g. ["$1", "$2", "$3"] for three values.
func INClause[T any](list []T) (placeholders []string, args []any) {
	placeholders = make([]string, len(list))
	args = make([]any, len(list))
	for i, id := range list {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	return placeholders, args
}
