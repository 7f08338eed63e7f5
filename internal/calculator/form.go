// Package calculator holds the transient state behind a cost calculation:
// the form values, the selected material and the last result.
package calculator

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Simplici0/threedcost/internal/material"
	"github.com/Simplici0/threedcost/internal/pricing"
	"github.com/Simplici0/threedcost/internal/settings"
)

// Field names a form input. The names match the JSON keys of pricing.Input.
type Field string

const (
	FieldMaterialCost            Field = "materialCost"
	FieldPrintWeight             Field = "printWeight"
	FieldPrintTimeHours          Field = "printTimeHours"
	FieldPrintTimeMinutes        Field = "printTimeMinutes"
	FieldMachineDepreciationRate Field = "machineDepreciationRate"
	FieldEnergyCostPerHour       Field = "energyCostPerHour"
	FieldPostProcessingTimeHours Field = "postProcessingTimeHours"
	FieldAdditionalCosts         Field = "additionalCosts"
	FieldDesignTimeHours         Field = "designTimeHours"
	FieldDesignerHourlyRate      Field = "designerHourlyRate"
	FieldDesiredMarginPercentage Field = "desiredMarginPercentage"
)

// Fields lists every form input in display order.
var Fields = []Field{
	FieldMaterialCost,
	FieldPrintWeight,
	FieldPrintTimeHours,
	FieldPrintTimeMinutes,
	FieldMachineDepreciationRate,
	FieldEnergyCostPerHour,
	FieldPostProcessingTimeHours,
	FieldAdditionalCosts,
	FieldDesignTimeHours,
	FieldDesignerHourlyRate,
	FieldDesiredMarginPercentage,
}

const defaultMarginPercentage = "30"

var ErrUnknownField = errors.New("unknown form field")

// Form is not safe for concurrent use.
type Form struct {
	values   pricing.Input
	selected *material.Profile
	result   *pricing.Result
}

// NewForm returns a form seeded from the settings defaults.
func NewForm(s settings.AppSettings) *Form {
	f := &Form{values: pricing.Input{DesiredMarginPercentage: defaultMarginPercentage}}
	f.ApplySettings(s)
	return f
}

// ApplySettings re-seeds the inputs whose defaults come from settings.
func (f *Form) ApplySettings(s settings.AppSettings) {
	f.values.MachineDepreciationRate = formatNumber(s.DefaultMachineDepreciationRate)
	f.values.DesignerHourlyRate = formatNumber(s.DefaultHourlyRate)
}

// Set stores raw text for field. The text is not validated.
func (f *Form) Set(field Field, value string) error {
	dst, ok := f.field(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	*dst = value
	return nil
}

// Get returns the text currently held for field.
func (f *Form) Get(field Field) (string, bool) {
	dst, ok := f.field(field)
	if !ok {
		return "", false
	}
	return *dst, true
}

// Values returns the current inputs.
func (f *Form) Values() pricing.Input {
	return f.values
}

// SelectMaterial marks the profile with id as selected. It does not change
// the material cost input; see PrefillFromSelected.
func (f *Form) SelectMaterial(id string, profiles []material.Profile) bool {
	for _, p := range profiles {
		if p.ID == id {
			f.selected = &p
			return true
		}
	}
	f.selected = nil
	return false
}

// Selected returns the selected profile, if any.
func (f *Form) Selected() (material.Profile, bool) {
	if f.selected == nil {
		return material.Profile{}, false
	}
	return *f.selected, true
}

// PrefillFromSelected copies the selected profile's cost per gram into the
// material cost input.
func (f *Form) PrefillFromSelected() bool {
	if f.selected == nil {
		return false
	}
	f.values.MaterialCost = formatNumber(f.selected.CostPerGram)
	return true
}

// Calculate runs the engine against the current inputs and the given settings
// snapshot, and keeps the result.
func (f *Form) Calculate(mode pricing.Mode, s settings.AppSettings) pricing.Result {
	result := pricing.Calculate(f.values, mode, pricing.Defaults{HourlyRate: s.DefaultHourlyRate})
	f.result = &result
	return result
}

// Result returns the last calculation result, if any.
func (f *Form) Result() (pricing.Result, bool) {
	if f.result == nil {
		return pricing.Result{}, false
	}
	return *f.result, true
}

func (f *Form) field(field Field) (*string, bool) {
	v := &f.values
	switch field {
	case FieldMaterialCost:
		return &v.MaterialCost, true
	case FieldPrintWeight:
		return &v.PrintWeight, true
	case FieldPrintTimeHours:
		return &v.PrintTimeHours, true
	case FieldPrintTimeMinutes:
		return &v.PrintTimeMinutes, true
	case FieldMachineDepreciationRate:
		return &v.MachineDepreciationRate, true
	case FieldEnergyCostPerHour:
		return &v.EnergyCostPerHour, true
	case FieldPostProcessingTimeHours:
		return &v.PostProcessingTimeHours, true
	case FieldAdditionalCosts:
		return &v.AdditionalCosts, true
	case FieldDesignTimeHours:
		return &v.DesignTimeHours, true
	case FieldDesignerHourlyRate:
		return &v.DesignerHourlyRate, true
	case FieldDesiredMarginPercentage:
		return &v.DesiredMarginPercentage, true
	default:
		return nil, false
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
