package main

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StringTransformer defines the contract for a function that can transform a string.
type StringTransformer interface {
	TransformString(t transform.Transformer, s string) (string, int, error)
}

// defaultTransformer is the production implementation of our interface.
type defaultTransformer struct{}

// TransformString calls the actual transform.String function.
func (dt defaultTransformer) TransformString(t transform.Transformer, s string) (string, int, error) {
	return transform.String(t, s)
}

// Use a variable of the interface type. This is our "injection point".
var transformer StringTransformer = defaultTransformer{}

// This file contains helper functions for string manipulation.

// normalizeFacilityName standardizes a hospital name for cross-source fuzzy
// matching. Korean text needs no case folding, but upstream sources disagree
// on compatibility forms (full-width characters, parenthesized branch names)
// and on spacing, so the name is NFKC-normalized and all whitespace is
// removed before comparison.
func normalizeFacilityName(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("input string is not valid UTF-8")
	}
	t := transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.Z)))
	result, _, err := transformer.TransformString(t, s)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(result)), nil
}
