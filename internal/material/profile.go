// Package material manages the user's reusable material cost profiles.
package material

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/threedcost/internal/pricing"
)

var (
	ErrProfileNotFound = errors.New("material profile not found")
	ErrDuplicateID     = errors.New("material profile id already exists")
	ErrInvalidProfile  = errors.New("invalid material profile")
)

// Profile is one named print material.
type Profile struct {
	ID                string  `json:"id" yaml:"id"`
	Name              string  `json:"name" yaml:"name"`
	CostPerGram       float64 `json:"costPerGram" yaml:"costPerGram"`
	Density           float64 `json:"density" yaml:"density"`                     // g/cm³
	EnergyConsumption float64 `json:"energyConsumption" yaml:"energyConsumption"` // kWh per gram
}

// Validate checks the invariants every stored profile satisfies.
func (p Profile) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if p.CostPerGram < 0 {
		errs = append(errs, errors.New("costPerGram must be >= 0"))
	}
	if p.Density <= 0 {
		errs = append(errs, errors.New("density must be > 0"))
	}
	if p.EnergyConsumption < 0 {
		errs = append(errs, errors.New("energyConsumption must be >= 0"))
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append([]error{ErrInvalidProfile}, errs...)...)
}

// Form is the text a user typed into the add/edit profile form.
type Form struct {
	Name              string
	CostPerGram       string
	Density           string
	EnergyConsumption string
}

// FormFrom renders p back into editable text.
func FormFrom(p Profile) Form {
	return Form{
		Name:              p.Name,
		CostPerGram:       fmt.Sprint(p.CostPerGram),
		Density:           fmt.Sprint(p.Density),
		EnergyConsumption: fmt.Sprint(p.EnergyConsumption),
	}
}

// ParseForm converts form text into a Profile with the given id.
// Every field is required; numbers accept a decimal comma.
func ParseForm(id string, f Form) (Profile, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" || strings.TrimSpace(f.CostPerGram) == "" || strings.TrimSpace(f.Density) == "" || strings.TrimSpace(f.EnergyConsumption) == "" {
		return Profile{}, fmt.Errorf("%w: all fields are required", ErrInvalidProfile)
	}

	p := Profile{ID: id, Name: name}
	fields := []struct {
		label string
		raw   string
		dst   *float64
	}{
		{"costPerGram", f.CostPerGram, &p.CostPerGram},
		{"density", f.Density, &p.Density},
		{"energyConsumption", f.EnergyConsumption, &p.EnergyConsumption},
	}
	for _, field := range fields {
		v, ok := pricing.ParseDecimal(field.raw)
		if !ok {
			return Profile{}, fmt.Errorf("%w: %s must be numeric", ErrInvalidProfile, field.label)
		}
		*field.dst = v
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
