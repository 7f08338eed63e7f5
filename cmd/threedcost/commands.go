package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Simplici0/threedcost/internal/calculator"
	"github.com/Simplici0/threedcost/internal/material"
	"github.com/Simplici0/threedcost/internal/pricing"
	"github.com/Simplici0/threedcost/internal/settings"
)

func newCalcCmd(c *cli) *cobra.Command {
	var (
		mode       string
		materialID string
		prefill    bool
	)
	values := make(map[calculator.Field]*string, len(calculator.Fields))

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate the cost and suggested price of a print job",
		Example: `  threedcost calc --material-cost 0.08 --print-weight 50 --print-time-hours 2 \
    --print-time-minutes 30 --machine-depreciation-rate 10 --energy-cost-per-hour 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := pricing.ParseMode(mode)
			if err != nil {
				return err
			}

			current := c.app.Settings.Settings()
			form := calculator.NewForm(current)
			for _, field := range calculator.Fields {
				if cmd.Flags().Changed(flagName(string(field))) {
					if err := form.Set(field, *values[field]); err != nil {
						return err
					}
				}
			}

			if materialID != "" {
				if !form.SelectMaterial(materialID, c.app.Profiles.Profiles()) {
					return fmt.Errorf("%w: %s", material.ErrProfileNotFound, materialID)
				}
				if prefill && !cmd.Flags().Changed(flagName(string(calculator.FieldMaterialCost))) {
					form.PrefillFromSelected()
				}
			}

			result := form.Calculate(m, current)
			printResult(cmd.OutOrStdout(), form, result, current.Currency)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&mode, "mode", string(pricing.ModePrintOnly), "printOnly or printAndDesign")
	flags.StringVar(&materialID, "material", "", "id of the material profile to select")
	flags.BoolVar(&prefill, "prefill", false, "use the selected profile's cost per gram unless --material-cost is given")
	for _, field := range calculator.Fields {
		v := new(string)
		values[field] = v
		flags.StringVar(v, flagName(string(field)), "", string(field))
	}
	return cmd
}

func printResult(w io.Writer, form *calculator.Form, result pricing.Result, currency settings.Currency) {
	line := func(label string, amount float64) {
		fmt.Fprintf(w, "%-22s %10.2f %s\n", label, amount, currency)
	}

	if p, ok := form.Selected(); ok {
		fmt.Fprintf(w, "%-22s %s\n", "Material profile", p.Name)
	}
	fmt.Fprintf(w, "%-22s %10.2f h\n", "Print time", result.Breakdown.TotalPrintTimeHours)
	line("Material", result.Breakdown.MaterialCost)
	line("Machine", result.Breakdown.MachineCost)
	line("Energy", result.Breakdown.EnergyCost)
	line("Post-processing", result.Breakdown.PostProcessingCost)
	line("Additional", result.Breakdown.AdditionalCosts)
	line("Design", result.Breakdown.DesignCost)
	line("Total cost", result.TotalCost)
	line(fmt.Sprintf("Margin (%g%%)", result.DesiredMarginPercentage), result.MarginValue)
	line("Suggested price", result.SuggestedSellingPrice)
}

func newSettingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change application settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), c.app.Settings.Settings())
		},
	}

	var (
		currency, theme, unitSystem, language string
		hourlyRate, machineRate               float64
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var patch settings.Patch
			flags := cmd.Flags()
			if flags.Changed("currency") {
				v := settings.Currency(currency)
				patch.Currency = &v
			}
			if flags.Changed("hourly-rate") {
				patch.DefaultHourlyRate = &hourlyRate
			}
			if flags.Changed("machine-rate") {
				patch.DefaultMachineDepreciationRate = &machineRate
			}
			if flags.Changed("theme") {
				v := settings.ThemeMode(theme)
				patch.ThemeMode = &v
			}
			if flags.Changed("unit-system") {
				v := settings.UnitSystem(unitSystem)
				patch.UnitSystem = &v
			}
			if flags.Changed("language") {
				v := settings.Language(language)
				patch.Language = &v
			}
			if patch.IsEmpty() {
				return errors.New("nothing to change; pass at least one setting flag")
			}

			updated, err := c.app.Settings.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), updated)
		},
	}
	set.Flags().StringVar(&currency, "currency", "", "currency code (PLN, USD, EUR, GBP)")
	set.Flags().Float64Var(&hourlyRate, "hourly-rate", 0, "default hourly rate for post-processing and design")
	set.Flags().Float64Var(&machineRate, "machine-rate", 0, "default machine depreciation per hour")
	set.Flags().StringVar(&theme, "theme", "", "light, dark or system")
	set.Flags().StringVar(&unitSystem, "unit-system", "", "metric or imperial")
	set.Flags().StringVar(&language, "language", "", "pl or en")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			updated, err := c.app.Settings.Reset(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), updated)
		},
	}

	cmd.AddCommand(show, set, reset)
	return cmd
}

func newProfilesCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile"},
		Short:   "Manage material profiles",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List material profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, p := range c.app.Profiles.Profiles() {
				fmt.Fprintf(w, "%s\t%s\t%g/g\t%g g/cm3\t%g kWh/g\n", p.ID, p.Name, p.CostPerGram, p.Density, p.EnergyConsumption)
			}
			return nil
		},
	}

	var form material.Form
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a material profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := material.ParseForm("", form)
			if err != nil {
				return err
			}
			added, err := c.app.Profiles.Add(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), added.ID)
			return nil
		},
	}
	bindProfileFlags(add, &form)

	var edits material.Form
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a material profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			existing, ok := c.app.Profiles.Profile(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", material.ErrProfileNotFound, args[0])
			}

			merged := material.FormFrom(existing)
			flags := cmd.Flags()
			if flags.Changed("name") {
				merged.Name = edits.Name
			}
			if flags.Changed("cost-per-gram") {
				merged.CostPerGram = edits.CostPerGram
			}
			if flags.Changed("density") {
				merged.Density = edits.Density
			}
			if flags.Changed("energy") {
				merged.EnergyConsumption = edits.EnergyConsumption
			}

			p, err := material.ParseForm(existing.ID, merged)
			if err != nil {
				return err
			}
			return c.app.Profiles.Update(cmd.Context(), p)
		},
	}
	bindProfileFlags(edit, &edits)

	remove := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a material profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Profiles.Delete(cmd.Context(), args[0])
		},
	}

	export := &cobra.Command{
		Use:   "export [file]",
		Short: "Write all profiles as YAML to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return material.EncodeYAML(cmd.OutOrStdout(), c.app.Profiles.Profiles())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			if err := material.EncodeYAML(f, c.app.Profiles.Profiles()); err != nil {
				return err
			}
			return f.Close()
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add profiles from a YAML file written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			profiles, err := material.DecodeYAML(f)
			if err != nil {
				return err
			}

			added, skipped := 0, 0
			for _, p := range profiles {
				_, err := c.app.Profiles.Add(cmd.Context(), p)
				switch {
				case err == nil:
					added++
				case errors.Is(err, material.ErrDuplicateID):
					skipped++
				default:
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d profiles, skipped %d existing\n", added, skipped)
			return nil
		},
	}

	cmd.AddCommand(list, add, edit, remove, export, importCmd)
	return cmd
}

func bindProfileFlags(cmd *cobra.Command, form *material.Form) {
	cmd.Flags().StringVar(&form.Name, "name", "", "material name")
	cmd.Flags().StringVar(&form.CostPerGram, "cost-per-gram", "", "cost per gram")
	cmd.Flags().StringVar(&form.Density, "density", "", "density in g/cm3")
	cmd.Flags().StringVar(&form.EnergyConsumption, "energy", "", "energy use in kWh per gram")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
