// Package settings holds the application-wide AppSettings record.
package settings

import (
	"errors"
	"fmt"
	"slices"
)

type (
	Currency   string
	ThemeMode  string
	UnitSystem string
	Language   string
)

const (
	CurrencyPLN Currency = "PLN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"

	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"

	UnitMetric   UnitSystem = "metric"
	UnitImperial UnitSystem = "imperial"

	LanguagePolish  Language = "pl"
	LanguageEnglish Language = "en"
)

// Supported values, in display order. The first entry of each is the default.
var (
	Currencies  = []Currency{CurrencyPLN, CurrencyUSD, CurrencyEUR, CurrencyGBP}
	ThemeModes  = []ThemeMode{ThemeSystem, ThemeLight, ThemeDark}
	UnitSystems = []UnitSystem{UnitMetric, UnitImperial}
	Languages   = []Language{LanguagePolish, LanguageEnglish}
)

var ErrInvalidSetting = errors.New("invalid setting")

func (c Currency) Valid() bool   { return slices.Contains(Currencies, c) }
func (t ThemeMode) Valid() bool  { return slices.Contains(ThemeModes, t) }
func (u UnitSystem) Valid() bool { return slices.Contains(UnitSystems, u) }
func (l Language) Valid() bool   { return slices.Contains(Languages, l) }

// AppSettings is the single per-installation settings record.
type AppSettings struct {
	Currency                       Currency   `json:"currency"`
	DefaultHourlyRate              float64    `json:"defaultHourlyRate"`
	DefaultMachineDepreciationRate float64    `json:"defaultMachineDepreciationRate"`
	ThemeMode                      ThemeMode  `json:"themeMode"`
	UnitSystem                     UnitSystem `json:"unitSystem"`
	Language                       Language   `json:"language"`
}

// Defaults returns the record used on first launch and for any field missing from storage.
func Defaults() AppSettings {
	return AppSettings{
		Currency:                       Currencies[0],
		DefaultHourlyRate:              50,
		DefaultMachineDepreciationRate: 20,
		ThemeMode:                      ThemeModes[0],
		UnitSystem:                     UnitSystems[0],
		Language:                       Languages[0],
	}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Currency                       *Currency   `json:"currency,omitempty"`
	DefaultHourlyRate              *float64    `json:"defaultHourlyRate,omitempty"`
	DefaultMachineDepreciationRate *float64    `json:"defaultMachineDepreciationRate,omitempty"`
	ThemeMode                      *ThemeMode  `json:"themeMode,omitempty"`
	UnitSystem                     *UnitSystem `json:"unitSystem,omitempty"`
	Language                       *Language   `json:"language,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Validate checks every set field against its allowed values.
func (p Patch) Validate() error {
	var errs []error
	if p.Currency != nil && !p.Currency.Valid() {
		errs = append(errs, fmt.Errorf("currency %q is not supported", *p.Currency))
	}
	if p.DefaultHourlyRate != nil && *p.DefaultHourlyRate < 0 {
		errs = append(errs, errors.New("defaultHourlyRate must be >= 0"))
	}
	if p.DefaultMachineDepreciationRate != nil && *p.DefaultMachineDepreciationRate < 0 {
		errs = append(errs, errors.New("defaultMachineDepreciationRate must be >= 0"))
	}
	if p.ThemeMode != nil && !p.ThemeMode.Valid() {
		errs = append(errs, fmt.Errorf("themeMode %q is not supported", *p.ThemeMode))
	}
	if p.UnitSystem != nil && !p.UnitSystem.Valid() {
		errs = append(errs, fmt.Errorf("unitSystem %q is not supported", *p.UnitSystem))
	}
	if p.Language != nil && !p.Language.Valid() {
		errs = append(errs, fmt.Errorf("language %q is not supported", *p.Language))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidSetting}, errs...)...)
}

// Apply returns s with every set field of p copied over.
func (p Patch) Apply(s AppSettings) AppSettings {
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.DefaultHourlyRate != nil {
		s.DefaultHourlyRate = *p.DefaultHourlyRate
	}
	if p.DefaultMachineDepreciationRate != nil {
		s.DefaultMachineDepreciationRate = *p.DefaultMachineDepreciationRate
	}
	if p.ThemeMode != nil {
		s.ThemeMode = *p.ThemeMode
	}
	if p.UnitSystem != nil {
		s.UnitSystem = *p.UnitSystem
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	return s
}

// sanitize replaces out-of-range fields with their defaults and returns the names it reset.
func sanitize(s AppSettings) (AppSettings, []string) {
	d := Defaults()
	var reset []string
	if !s.Currency.Valid() {
		s.Currency = d.Currency
		reset = append(reset, "currency")
	}
	if s.DefaultHourlyRate < 0 {
		s.DefaultHourlyRate = d.DefaultHourlyRate
		reset = append(reset, "defaultHourlyRate")
	}
	if s.DefaultMachineDepreciationRate < 0 {
		s.DefaultMachineDepreciationRate = d.DefaultMachineDepreciationRate
		reset = append(reset, "defaultMachineDepreciationRate")
	}
	if !s.ThemeMode.Valid() {
		s.ThemeMode = d.ThemeMode
		reset = append(reset, "themeMode")
	}
	if !s.UnitSystem.Valid() {
		s.UnitSystem = d.UnitSystem
		reset = append(reset, "unitSystem")
	}
	if !s.Language.Valid() {
		s.Language = d.Language
		reset = append(reset, "language")
	}
	return s, reset
}
