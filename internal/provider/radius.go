package provider

import (
	"fmt"

	"github.com/law-makers/funnel/pkg/models"
)

// radiusBuckets are the discrete search radii a board accepts, ascending.
// A requested radius snaps down to the largest bucket not exceeding it;
// anything under the smallest bucket becomes 0 (exact location).
type radiusBuckets []int

func (b radiusBuckets) snap(radius int) int {
	snapped := 0
	for _, v := range b {
		if radius < v {
			break
		}
		snapped = v
	}
	return snapped
}

var (
	radiusCAN = radiusBuckets{5, 10, 20, 50, 100}
	radiusUSA = radiusBuckets{5, 10, 20, 30, 40, 50, 60, 75, 100, 150, 200}
)

// localeDomain maps a locale to the board's top-level domain suffix.
var localeDomain = map[models.Locale]string{
	models.LocaleCANEnglish: "ca",
	models.LocaleUSAEnglish: "com",
}

// localeRadius maps a locale to its radius bucket table.
var localeRadius = map[models.Locale]radiusBuckets{
	models.LocaleCANEnglish: radiusCAN,
	models.LocaleUSAEnglish: radiusUSA,
}

func localeParams(locale models.Locale) (domain string, radii radiusBuckets, err error) {
	domain, ok := localeDomain[locale]
	if !ok {
		return "", nil, fmt.Errorf("unsupported locale %q", locale)
	}
	return domain, localeRadius[locale], nil
}
