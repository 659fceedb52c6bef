package admin

import (
	"sort"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var (
	countriesOnce sync.Once
	countries     []Option
	countryNames  map[string]string
)

// Countries lists ISO 3166 country codes with English names, sorted by
// name.
func Countries() []Option {
	countriesOnce.Do(loadCountries)
	return countries
}

// CountryName returns the English name of code, or code itself when it is
// not a known country.
func CountryName(code string) string {
	countriesOnce.Do(loadCountries)
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}

func loadCountries() {
	namer := display.English.Regions()
	countryNames = make(map[string]string)
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			code := string([]rune{a, b})
			region, err := language.ParseRegion(code)
			if err != nil || !region.IsCountry() || region.String() != code {
				continue
			}
			name := namer.Name(region)
			if name == "" {
				continue
			}
			countryNames[code] = name
			countries = append(countries, Option{Value: code, Label: name})
		}
	}
	sort.Slice(countries, func(i, j int) bool {
		return countries[i].Label < countries[j].Label
	})
}
