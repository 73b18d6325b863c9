package catalog

import "strings"

func matchesSpecialToken(courseName string, tokens []string) bool {
	lowered := strings.ToLower(courseName)
	for _, token := range tokens {
		if token != "" && strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}
