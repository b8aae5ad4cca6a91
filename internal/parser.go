package internal

import (
	"fmt"
	"strings"
)

// Parser parses email export files into a list of email records
type Parser interface {
	Parse(path string) ([]EmailRecord, error)
}

// ParserFunc is a function that implements Parser
type ParserFunc func(path string) ([]EmailRecord, error)

func (f ParserFunc) Parse(path string) ([]EmailRecord, error) {
	return f(path)
}

// parsers is the registry of available parsers
var parsers = map[string]Parser{}

// RegisterParser registers a parser with the given name
func RegisterParser(name string, p Parser) {
	parsers[name] = p
}

// GetParser returns the parser for the given source type
func GetParser(source string) (Parser, error) {
	p, ok := parsers[source]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s (available: %v)", source, AvailableSources())
	}
	return p, nil
}

// AvailableSources returns a list of registered source types
func AvailableSources() []string {
	var sources []string
	for name := range parsers {
		sources = append(sources, name)
	}
	return sources
}

// IsKnownParser returns true if the name is a registered parser
func IsKnownParser(name string) bool {
	_, ok := parsers[name]
	return ok
}

// ParseFileArg parses a file argument that may have a format prefix.
// Returns (format, path). If no valid prefix, format is empty.
// Example: "json:emails.json" → ("json", "emails.json")
// Example: "emails.json" → ("", "emails.json")
// Example: "C:\path\export.xlsx" → ("", "C:\path\export.xlsx") // Windows path
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownParser(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg // Not a known parser, treat whole thing as path
}
