package token

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Launch parameter limits.
const (
	MaxNameLen   = 32
	MaxSymbolLen = 10
	MaxSupply    = 1_000_000_000_000
)

// ValidateName checks a token name and returns it trimmed. The length cap
// counts characters, not bytes, so multibyte names get the full budget.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("token name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return "", fmt.Errorf("token name must be %d characters or less", MaxNameLen)
	}
	return name, nil
}

// ValidateSymbol checks a ticker symbol and returns it upper-cased.
func ValidateSymbol(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", fmt.Errorf("token symbol cannot be empty")
	}
	if len(symbol) > MaxSymbolLen {
		return "", fmt.Errorf("token symbol must be %d characters or less", MaxSymbolLen)
	}
	upper := strings.ToUpper(symbol)
	for _, r := range upper {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", fmt.Errorf("token symbol must contain only letters and numbers")
		}
	}
	return upper, nil
}

// ValidateSupply parses a total supply and checks its bounds. Digit-group
// separators ("1,000,000" or "1_000_000") are accepted.
func ValidateSupply(text string) (uint64, error) {
	cleaned := strings.NewReplacer(",", "", "_", "").Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return 0, fmt.Errorf("total supply must be a positive number")
	}
	supply, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || supply <= 0 {
		return 0, fmt.Errorf("total supply must be a positive number")
	}
	if supply != math.Trunc(supply) {
		return 0, fmt.Errorf("total supply must be a whole number")
	}
	if supply > MaxSupply {
		return 0, fmt.Errorf("total supply cannot exceed 1 trillion")
	}
	return uint64(supply), nil
}
