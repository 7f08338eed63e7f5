package pricing

import "fmt"

// Mode selects which labor components are billed.
type Mode string

const (
	ModePrintOnly      Mode = "printOnly"
	ModePrintAndDesign Mode = "printAndDesign"
)

// ParseMode returns the Mode named by raw. An empty string selects ModePrintOnly.
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case "", ModePrintOnly:
		return ModePrintOnly, nil
	case ModePrintAndDesign:
		return ModePrintAndDesign, nil
	default:
		return "", fmt.Errorf("unknown calculation mode %q", raw)
	}
}

// Input holds the raw form values of a single calculation.
// Every field is free text; see ParseNumber for how it is read.
type Input struct {
	MaterialCost            string `json:"materialCost"`
	PrintWeight             string `json:"printWeight"`
	PrintTimeHours          string `json:"printTimeHours"`
	PrintTimeMinutes        string `json:"printTimeMinutes"`
	MachineDepreciationRate string `json:"machineDepreciationRate"`
	EnergyCostPerHour       string `json:"energyCostPerHour"`
	PostProcessingTimeHours string `json:"postProcessingTimeHours"`
	AdditionalCosts         string `json:"additionalCosts"`
	DesignTimeHours         string `json:"designTimeHours"`
	DesignerHourlyRate      string `json:"designerHourlyRate"`
	DesiredMarginPercentage string `json:"desiredMarginPercentage"`
}

// Defaults carries the values taken from the current settings rather than from the form.
type Defaults struct {
	// HourlyRate bills post-processing time. It is never overridden per calculation.
	HourlyRate float64
}

// Breakdown contains every line item of the calculation.
type Breakdown struct {
	TotalPrintTimeHours float64 `json:"totalPrintTimeHours"`
	MaterialCost        float64 `json:"materialCost"`
	MachineCost         float64 `json:"machineCost"`
	EnergyCost          float64 `json:"energyCost"`
	PostProcessingCost  float64 `json:"postProcessingCost"`
	AdditionalCosts     float64 `json:"additionalCosts"`
	DesignCost          float64 `json:"designCost"`
}

// Result groups the calculation output.
type Result struct {
	Breakdown               Breakdown `json:"breakdown"`
	TotalCost               float64   `json:"totalCost"`
	MarginValue             float64   `json:"marginValue"`
	SuggestedSellingPrice   float64   `json:"suggestedSellingPrice"`
	DesiredMarginPercentage float64   `json:"desiredMarginPercentage"`
}

// Calculate computes the job cost, margin and suggested price.
// It never fails: unreadable fields count as zero and no bounds are enforced.
func Calculate(in Input, mode Mode, defaults Defaults) Result {
	materialCostPerGram := ParseNumber(in.MaterialCost)
	printWeight := ParseNumber(in.PrintWeight)
	printTimeHours := ParseNumber(in.PrintTimeHours)
	printTimeMinutes := ParseNumber(in.PrintTimeMinutes)
	machineRate := ParseNumber(in.MachineDepreciationRate)
	energyCostPerHour := ParseNumber(in.EnergyCostPerHour)
	postProcessingHours := ParseNumber(in.PostProcessingTimeHours)
	additionalCosts := ParseNumber(in.AdditionalCosts)
	designTimeHours := ParseNumber(in.DesignTimeHours)
	designerHourlyRate := ParseNumber(in.DesignerHourlyRate)
	marginPercent := ParseNumber(in.DesiredMarginPercentage)

	totalPrintTime := printTimeHours + printTimeMinutes/60.0
	materialCost := materialCostPerGram * printWeight
	machineCost := totalPrintTime * machineRate
	energyCost := totalPrintTime * energyCostPerHour
	postProcessingCost := postProcessingHours * defaults.HourlyRate

	designCost := 0.0
	if mode == ModePrintAndDesign {
		designCost = designTimeHours * designerHourlyRate
	}

	total := materialCost + machineCost + energyCost + postProcessingCost + additionalCosts + designCost
	margin := total * (marginPercent / 100.0)

	return Result{
		Breakdown: Breakdown{
			TotalPrintTimeHours: totalPrintTime,
			MaterialCost:        materialCost,
			MachineCost:         machineCost,
			EnergyCost:          energyCost,
			PostProcessingCost:  postProcessingCost,
			AdditionalCosts:     additionalCosts,
			DesignCost:          designCost,
		},
		TotalCost:               total,
		MarginValue:             margin,
		SuggestedSellingPrice:   total + margin,
		DesiredMarginPercentage: marginPercent,
	}
}
