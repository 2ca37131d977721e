package adcopy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/ads-proposal-backend/internal/apperror"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

func headlines(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "Headline " + string(rune('A'+i))
	}
	return out
}

var twoDescriptions = []string{"Fast delivery across the country.", "Free returns within thirty days."}

const landing = "https://example.com/lp"

func violations(t *testing.T, err error) []string {
	t.Helper()
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Violations
}

func TestValidateAcceptsMinimalAd(t *testing.T) {
	warnings, err := Validate(headlines(3), twoDescriptions, landing)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestHeadlineLengthBoundary(t *testing.T) {
	hs := headlines(3)
	hs[0] = strings.Repeat("a", 30)
	warnings, err := Validate(hs, twoDescriptions, landing)
	require.NoError(t, err)
	assert.Len(t, warnings, 1, "30 characters is near the limit")

	hs[0] = strings.Repeat("a", 31)
	_, err = Validate(hs, twoDescriptions, landing)
	assert.Len(t, violations(t, err), 1)
}

func TestHeadlineLengthCountsCharactersNotBytes(t *testing.T) {
	hs := headlines(3)
	hs[0] = strings.Repeat("広", 30)
	_, err := Validate(hs, twoDescriptions, landing)
	require.NoError(t, err)
}

func TestHeadlineLengthIgnoresSurroundingSpace(t *testing.T) {
	hs := headlines(3)
	hs[1] = "  " + strings.Repeat("b", 30) + "  "
	_, err := Validate(hs, twoDescriptions, landing)
	require.NoError(t, err)
}

func TestHeadlineCount(t *testing.T) {
	_, err := Validate(headlines(2), twoDescriptions, landing)
	assert.Contains(t, violations(t, err)[0], "at least 3")

	_, err = Validate(headlines(15), twoDescriptions, landing)
	require.NoError(t, err)

	_, err = Validate(headlines(16), twoDescriptions, landing)
	assert.Contains(t, violations(t, err)[0], "at most 15")
}

func TestDescriptionCount(t *testing.T) {
	_, err := Validate(headlines(3), twoDescriptions, landing)
	require.NoError(t, err)

	five := []string{"one", "two", "three", "four", "five"}
	_, err = Validate(headlines(3), five, landing)
	assert.Contains(t, violations(t, err)[0], "at most 4")

	_, err = Validate(headlines(3), []string{"only one"}, landing)
	assert.Contains(t, violations(t, err)[0], "at least 2")
}

func TestDescriptionLength(t *testing.T) {
	ds := []string{strings.Repeat("d", 90), strings.Repeat("d", 86)}
	warnings, err := Validate(headlines(3), ds, landing)
	require.NoError(t, err)
	assert.Len(t, warnings, 2)

	ds[0] = strings.Repeat("d", 91)
	_, err = Validate(headlines(3), ds, landing)
	assert.Len(t, violations(t, err), 1)
}

func TestDuplicateHeadlinesWarnOnly(t *testing.T) {
	hs := []string{"Buy Shoes", " buy shoes ", "Free Shipping"}
	warnings, err := Validate(hs, twoDescriptions, landing)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "duplicates headline 1")
}

func TestEmptyTextIsViolation(t *testing.T) {
	hs := headlines(3)
	hs[2] = "   "
	_, err := Validate(hs, twoDescriptions, landing)
	assert.Contains(t, violations(t, err)[0], "headline 3 is empty")
}

func TestFinalURL(t *testing.T) {
	_, err := Validate(headlines(3), twoDescriptions, "")
	assert.Equal(t, []string{"final URL is required"}, violations(t, err))

	_, err = Validate(headlines(3), twoDescriptions, "example.com/lp")
	assert.Len(t, violations(t, err), 1)

	_, err = Validate(headlines(3), twoDescriptions, "https://example.com/a b")
	assert.Len(t, violations(t, err), 1)

	_, err = Validate(headlines(3), twoDescriptions, "http://example.com/?q=1")
	require.NoError(t, err)
}

func TestViolationsAreAccumulated(t *testing.T) {
	hs := []string{strings.Repeat("x", 31), "ok"}
	_, err := Validate(hs, []string{"one"}, "ftp://example.com")
	v := violations(t, err)
	assert.Len(t, v, 4)
}

func TestValidateChange(t *testing.T) {
	change := &models.AdCopyChange{
		ProposedAd: models.ProposedAd{Headlines: headlines(3), Descriptions: twoDescriptions, FinalURL: landing},
	}
	_, err := ValidateChange(change)
	assert.Equal(t, []string{"ad_group_id is required"}, violations(t, err))

	change.ProposedAd.Headlines = headlines(1)
	_, err = ValidateChange(change)
	assert.Len(t, violations(t, err), 2)

	change.AdGroupRef = "123"
	change.ProposedAd.Headlines = headlines(4)
	_, err = ValidateChange(change)
	require.NoError(t, err)

	_, err = ValidateChange(nil)
	assert.True(t, apperror.IsValidation(err))
}
