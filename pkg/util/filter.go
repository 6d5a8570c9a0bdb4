package util

// RemoveDuplicateStrings returns values with duplicates, empty strings and
// anything in skip removed, keeping first seen order.
func RemoveDuplicateStrings(values []string, skip []string) []string {
	seen := make(map[string]struct{}, len(values)+len(skip))
	for _, s := range skip {
		seen[s] = struct{}{}
	}

	var result []string
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}

	return result
}
