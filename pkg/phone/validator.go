package phone

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// unknownRegion makes the parser require a leading +<country code>
const unknownRegion = "ZZ"

// Errors returned by Validate
var (
	ErrEmpty          = errors.New("phone number cannot be empty")
	ErrUnknownCountry = errors.New("unknown country")
)

// PhoneType represents the type of phone number.
type PhoneType string

const (
	TypeFixedLine         PhoneType = "FIXED_LINE"
	TypeMobile            PhoneType = "MOBILE"
	TypeFixedLineOrMobile PhoneType = "FIXED_LINE_OR_MOBILE"
	TypeTollFree          PhoneType = "TOLL_FREE"
	TypeVoip              PhoneType = "VOIP"
	TypeUnknown           PhoneType = "UNKNOWN"
)

// countryRegions maps the country names stored on leads to ISO regions
var countryRegions = map[string]string{
	"ghana":        "GH",
	"kenya":        "KE",
	"nigeria":      "NG",
	"rwanda":       "RW",
	"morocco":      "MA",
	"south africa": "ZA",
	"egypt":        "EG",
}

// ValidationResult contains the result of phone number validation.
type ValidationResult struct {
	IsValid             bool      `json:"is_valid"`
	E164Format          string    `json:"e164_format"`
	InternationalFormat string    `json:"international_format"`
	NationalFormat      string    `json:"national_format"`
	CountryCode         string    `json:"country_code"`
	PhoneType           PhoneType `json:"phone_type"`
}

// Region resolves a lead country to an ISO-3166 alpha-2 region. It
// accepts the stored country names or a two-letter code; an empty
// country resolves to the unknown region.
func Region(country string) (string, error) {
	country = strings.TrimSpace(country)
	if country == "" {
		return unknownRegion, nil
	}
	if region, ok := countryRegions[strings.ToLower(country)]; ok {
		return region, nil
	}
	if len(country) == 2 {
		region := strings.ToUpper(country)
		if phonenumbers.GetCountryCodeForRegion(region) != 0 {
			return region, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownCountry, country)
}

// Validate parses phone in the context of country and reports its formats.
// Numbers that parse but are not assignable come back with IsValid false.
func Validate(phone, country string) (*ValidationResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrEmpty
	}

	region, err := Region(country)
	if err != nil {
		return nil, err
	}

	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	return &ValidationResult{
		IsValid:             phonenumbers.IsValidNumber(parsed),
		E164Format:          phonenumbers.Format(parsed, phonenumbers.E164),
		InternationalFormat: phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL),
		NationalFormat:      phonenumbers.Format(parsed, phonenumbers.NATIONAL),
		CountryCode:         phonenumbers.GetRegionCodeForNumber(parsed),
		PhoneType:           phoneType(phonenumbers.GetNumberType(parsed)),
	}, nil
}

func phoneType(t phonenumbers.PhoneNumberType) PhoneType {
	switch t {
	case phonenumbers.FIXED_LINE:
		return TypeFixedLine
	case phonenumbers.MOBILE:
		return TypeMobile
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return TypeFixedLineOrMobile
	case phonenumbers.TOLL_FREE:
		return TypeTollFree
	case phonenumbers.VOIP:
		return TypeVoip
	default:
		return TypeUnknown
	}
}
