package phone

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		phone      string
		country    string
		wantValid  bool
		wantE164   string
		wantRegion string
	}{
		{
			name:       "Ghana mobile by country name",
			phone:      "024 123 4567",
			country:    "Ghana",
			wantValid:  true,
			wantE164:   "+233241234567",
			wantRegion: "GH",
		},
		{
			name:       "Kenya mobile by lower-case name",
			phone:      "0712 345678",
			country:    "kenya",
			wantValid:  true,
			wantE164:   "+254712345678",
			wantRegion: "KE",
		},
		{
			name:       "ISO code",
			phone:      "(202) 456-1111",
			country:    "us",
			wantValid:  true,
			wantE164:   "+12024561111",
			wantRegion: "US",
		},
		{
			name:       "international number without country",
			phone:      "+233 24 123 4567",
			country:    "",
			wantValid:  true,
			wantE164:   "+233241234567",
			wantRegion: "GH",
		},
		{
			name:      "seeded placeholder parses but is not assignable",
			phone:     "+233-55-100001",
			country:   "Ghana",
			wantValid: false,
			wantE164:  "+23355100001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate(tt.phone, tt.country)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.IsValid)
			assert.Equal(t, tt.wantE164, result.E164Format)
			if tt.wantRegion != "" {
				assert.Equal(t, tt.wantRegion, result.CountryCode)
			}
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	_, err := Validate("   ", "Ghana")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Validate("024 123 4567", "Atlantis")
	assert.ErrorIs(t, err, ErrUnknownCountry)

	// national format needs a country
	_, err = Validate("024 123 4567", "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownCountry))

	_, err = Validate("not a number", "GH")
	assert.Error(t, err)
}

func TestRegion(t *testing.T) {
	tests := []struct {
		country string
		want    string
		wantErr bool
	}{
		{"Ghana", "GH", false},
		{"South Africa", "ZA", false},
		{" egypt ", "EG", false},
		{"ng", "NG", false},
		{"", unknownRegion, false},
		{"XX", "", true},
		{"Narnia", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			got, err := Region(tt.country)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCountry)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
