package utils

import (
	"strconv"
	"strings"
)

// ParseIntOption parses a string value to an integer, returning 0 if the string is empty or invalid
func ParseIntOption(value string) int {
	if value == "" {
		return 0
	}
	num, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return num
}

// ParseBoolOption parses "true", "1" or "yes" as true.
func ParseBoolOption(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	}
	return false
}
