// Package tier maps a subscriber's tier to the catalog tiers they may view.
// Tiers are ordered silver < gold < platinum; a movie carries an explicit list
// of tier tags and is visible when that list intersects the viewer's set.
package tier

import (
	"errors"
	"strings"
)

// Tier is a subscription level.
type Tier string

const (
	Silver   Tier = "silver"
	Gold     Tier = "gold"
	Platinum Tier = "platinum"
)

// ErrInvalidTier is returned for an empty or unknown tier value.
var ErrInvalidTier = errors.New("invalid tier")

// Accessible returns the tier tags a requester with tier t may see. Callers
// must not query the catalog when an error is returned.
func Accessible(t Tier) ([]string, error) {
	switch t {
	case Platinum:
		return []string{string(Platinum), string(Gold), string(Silver)}, nil
	case Gold:
		return []string{string(Gold), string(Silver)}, nil
	case Silver:
		return []string{string(Silver)}, nil
	}
	return nil, ErrInvalidTier
}

// Valid reports whether t is one of the known tiers.
func Valid(t Tier) bool {
	_, err := Accessible(t)
	return err == nil
}

// Parse normalises s (trim + lower case) and validates it.
func Parse(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !Valid(t) {
		return "", ErrInvalidTier
	}
	return t, nil
}

// SplitList splits a comma separated form value and trims each element.
// Empty elements are dropped, so "" yields an empty slice.
func SplitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseTags validates a movie's tier tag list. Each tag must be a known tier
// and at least one tag is required. Tags are returned as given (already
// trimmed by SplitList) with duplicates removed.
func ParseTags(tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, ErrInvalidTier
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		t, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		if seen[string(t)] {
			continue
		}
		seen[string(t)] = true
		out = append(out, string(t))
	}
	return out, nil
}

// Intersects reports whether any of tags is in accessible.
func Intersects(tags, accessible []string) bool {
	for _, a := range accessible {
		for _, t := range tags {
			if a == t {
				return true
			}
		}
	}
	return false
}
