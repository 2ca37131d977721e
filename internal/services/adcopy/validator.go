// Package adcopy checks responsive search ad copy against the platform's
// structural and length limits before anything is sent to the platform.
package adcopy

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

const (
	MaxHeadlineLength    = 30
	MaxDescriptionLength = 90
	MinHeadlines         = 3
	MaxHeadlines         = 15
	MinDescriptions      = 2
	MaxDescriptions      = 4

	headlineWarnMargin    = 3
	descriptionWarnMargin = 5
)

var finalURLPattern = regexp.MustCompile(`^https?://[^\s]+$`)

// Validate checks headlines, descriptions and the final URL. It returns the
// accumulated warnings, or a *apperror.ValidationError listing every
// violation found.
func Validate(headlines, descriptions []string, finalURL string) ([]string, error) {
	var violations, warnings []string

	checkTexts := func(kind string, texts []string, minCount, maxCount, maxLen, margin int) {
		switch {
		case len(texts) == 0:
			violations = append(violations, fmt.Sprintf("no %ss provided", kind))
			return
		case len(texts) < minCount:
			violations = append(violations, fmt.Sprintf("at least %d %ss required (got %d)", minCount, kind, len(texts)))
		case len(texts) > maxCount:
			violations = append(violations, fmt.Sprintf("at most %d %ss allowed (got %d)", maxCount, kind, len(texts)))
		}
		for i, text := range texts {
			trimmed := strings.TrimSpace(text)
			n := utf8.RuneCountInString(trimmed)
			switch {
			case n == 0:
				violations = append(violations, fmt.Sprintf("%s %d is empty", kind, i+1))
			case n > maxLen:
				violations = append(violations, fmt.Sprintf("%s %d exceeds %d characters (%d): %q", kind, i+1, maxLen, n, trimmed))
			case n > maxLen-margin:
				warnings = append(warnings, fmt.Sprintf("%s %d is close to the %d character limit (%d)", kind, i+1, maxLen, n))
			}
		}
	}

	checkTexts("headline", headlines, MinHeadlines, MaxHeadlines, MaxHeadlineLength, headlineWarnMargin)
	checkTexts("description", descriptions, MinDescriptions, MaxDescriptions, MaxDescriptionLength, descriptionWarnMargin)

	seen := make(map[string]int, len(headlines))
	for i, h := range headlines {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if first, ok := seen[key]; ok {
			warnings = append(warnings, fmt.Sprintf("headline %d duplicates headline %d: %q", i+1, first+1, strings.TrimSpace(h)))
			continue
		}
		seen[key] = i
	}

	url := strings.TrimSpace(finalURL)
	switch {
	case url == "":
		violations = append(violations, "final URL is required")
	case !finalURLPattern.MatchString(url):
		violations = append(violations, fmt.Sprintf("final URL is not a valid http(s) URL: %q", finalURL))
	}

	if len(violations) > 0 {
		return warnings, &apperror.ValidationError{Violations: violations}
	}
	return warnings, nil
}

// ValidateChange checks the structure of an ad copy change and then its content
func ValidateChange(change *models.AdCopyChange) ([]string, error) {
	if change == nil {
		return nil, &apperror.ValidationError{Violations: []string{"ad copy change is missing"}}
	}

	var structural []string
	if strings.TrimSpace(change.AdGroupRef) == "" {
		structural = append(structural, "ad_group_id is required")
	}
	warnings, err := Validate(change.ProposedAd.Headlines, change.ProposedAd.Descriptions, change.ProposedAd.FinalURL)
	if len(structural) == 0 {
		return warnings, err
	}

	var ve *apperror.ValidationError
	if err != nil {
		ve = err.(*apperror.ValidationError)
		structural = append(structural, ve.Violations...)
	}
	return warnings, &apperror.ValidationError{Violations: structural}
}
