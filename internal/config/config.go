// Package config defines the data structures of a plan file and includes
// functions for loading it and converting scenarios into calculator input.
package config

import (
	"fmt"
	"io"

	"github.com/iwvelando/loan-planner/pkg/configprocessor"
	"github.com/iwvelando/loan-planner/pkg/constants"
	"github.com/iwvelando/loan-planner/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for a loan-planner plan file.
type Configuration struct {
	UnitScale int64         `yaml:"unitScale,omitempty"` // won per submitted amount unit
	Scenarios []Scenario    `yaml:"scenarios"`
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, pdf
	File   string `yaml:"file,omitempty"`   // optional destination, required for pdf
}

// Scenario holds one loan to plan. Numeric values are kept as written and
// checked by the validator, so amounts may use thousands separators.
type Scenario struct {
	Name              string
	Active            bool
	StartDate         string
	Principal         string
	AnnualRate        string
	LoanTermMonths    string
	GracePeriodMonths string
	Events            []Event
}

// Event indicates a prepayment and/or rate change.
type Event struct {
	Name      string
	Round     string
	Amount    string
	NewRate   string
	Frequency string // rounds
	EndRound  string
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if configuration.UnitScale <= 0 {
		configuration.UnitScale = constants.DefaultUnitScale
	}

	return &configuration, nil
}

// ActiveScenarios returns the scenarios to calculate, in file order.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range c.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// ToRawInput converts a scenario into calculator input.
func (s Scenario) ToRawInput() validation.RawLoanInput {
	input := validation.RawLoanInput{
		Principal:         validation.Value(s.Principal),
		AnnualRate:        validation.Value(s.AnnualRate),
		LoanTermMonths:    validation.Value(s.LoanTermMonths),
		GracePeriodMonths: validation.Value(s.GracePeriodMonths),
		StartDate:         validation.Value(s.StartDate),
	}
	for _, event := range s.Events {
		input.Events = append(input.Events, validation.RawEvent{
			Round:     validation.Value(event.Round),
			Amount:    validation.Value(event.Amount),
			NewRate:   validation.Value(event.NewRate),
			Frequency: validation.Value(event.Frequency),
			EndRound:  validation.Value(event.EndRound),
		})
	}
	return input
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var scenarios []configprocessor.ScenarioInfo
	for _, scenario := range c.Scenarios {
		var scenarioEvents []configprocessor.EventInfo
		for _, event := range scenario.Events {
			scenarioEvents = append(scenarioEvents, configprocessor.EventInfo{
				Name:       event.Name,
				HasAmount:  event.Amount != "",
				HasNewRate: event.NewRate != "",
			})
		}

		scenarios = append(scenarios, configprocessor.ScenarioInfo{
			Name:   scenario.Name,
			Active: scenario.Active,
			Events: scenarioEvents,
		})
	}

	// Use the configprocessor for validation
	processor := configprocessor.NewProcessor()
	return processor.ValidateConfiguration(c.Output.Format, scenarios)
}
