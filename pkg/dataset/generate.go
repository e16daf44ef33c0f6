package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MinGenerateRows    = 10
	MaxGenerateRows    = 20000
	MinRegionsPerGroup = 1
	MaxRegionsPerGroup = 50
)

// DefaultGenerateCountries are used when no countries are given.
var DefaultGenerateCountries = []string{"Benin", "Togo"}

// GenerateOptions configure [Generate].
type GenerateOptions struct {
	Countries         []string
	Rows              int
	RegionsPerCountry int
}

// ParseCountries splits a comma separated list, trimming and title-casing
// each entry. Blank entries are dropped.
func ParseCountries(s string) []string {
	caser := cases.Title(language.Und)

	out := []string{}
	for _, c := range strings.Split(s, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}

		out = append(out, caser.String(c))
	}

	return out
}

// Generate builds a synthetic solar dataset with the columns country, region,
// site, GHI and temperature. Rows and regions are clamped to their allowed
// ranges.
func Generate(opts GenerateOptions, rng *rand.Rand) *Table {
	rows := min(max(opts.Rows, MinGenerateRows), MaxGenerateRows)
	regions := min(max(opts.RegionsPerCountry, MinRegionsPerGroup), MaxRegionsPerGroup)

	countries := opts.Countries
	if len(countries) == 0 {
		countries = DefaultGenerateCountries
	}

	t := &Table{
		Source:  "generated",
		Columns: []string{CountryColumn, "region", "site", "GHI", "temperature"},
		Rows:    make([][]string, 0, rows),
	}

	for range rows {
		country := countries[rng.IntN(len(countries))]
		region := fmt.Sprintf("Region-%d", rng.IntN(regions)+1)
		site := fmt.Sprintf("Site-%d", rng.IntN(999)+1)
		ghi := math.Abs(rng.NormFloat64()*100 + 300)
		temp := rng.NormFloat64()*5 + 28

		t.Rows = append(t.Rows, []string{
			country,
			region,
			site,
			strconv.FormatFloat(ghi, 'f', 3, 64),
			strconv.FormatFloat(temp, 'f', 3, 64),
		})
	}

	return t
}
