// Package configprocessor provides shared configuration processing utilities.
package configprocessor

import (
	"fmt"

	"github.com/iwvelando/loan-planner/pkg/validation"
)

// EventInfo represents event configuration information
type EventInfo struct {
	Name       string
	HasAmount  bool
	HasNewRate bool
}

// ScenarioInfo represents scenario configuration information
type ScenarioInfo struct {
	Name   string
	Active bool
	Events []EventInfo
}

// Processor handles configuration processing and validation
type Processor struct{}

// NewProcessor creates a new configuration processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ValidateConfiguration validates the configuration and returns warnings
func (p *Processor) ValidateConfiguration(outputFormat string, scenarios []ScenarioInfo) []string {
	var warnings []string

	if outputFormat != "" {
		if err := validation.ValidateOutputFormat(outputFormat); err != nil {
			warnings = append(warnings, fmt.Sprintf("Output format '%s' is not supported and will be overridden", outputFormat))
		}
	}

	active := 0
	names := make(map[string]int)
	for i, scenario := range scenarios {
		if !scenario.Active {
			continue // Skip inactive scenarios
		}
		active++

		if scenario.Name == "" {
			warnings = append(warnings, fmt.Sprintf("Scenario #%d has no name", i+1))
		} else {
			names[scenario.Name]++
			if names[scenario.Name] == 2 {
				warnings = append(warnings, fmt.Sprintf("Scenario name '%s' is used more than once", scenario.Name))
			}
		}

		// Events without an amount or a rate are dropped by the validator.
		for j, event := range scenario.Events {
			if event.HasAmount || event.HasNewRate {
				continue
			}
			name := event.Name
			if name == "" {
				name = fmt.Sprintf("#%d", j+1)
			}
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' event '%s' has neither an amount nor a new rate and will be ignored", scenario.Name, name))
		}
	}

	if active == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be calculated")
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}
