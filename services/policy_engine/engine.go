// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package policy_engine enforces the PII guardrail deterministically.
// The question-answering prompt instructs the model never to disclose
// Aadhaar numbers, PAN numbers, or other sensitive identifiers, but a
// prompt cannot guarantee that. This engine scans and masks generated
// answers after the fact with compiled regex patterns, so the guardrail
// holds even when the model ignores its instructions.
package policy_engine

import (
	"fmt"
	"strings"

	"github.com/riteshbawaskar/doc-classify/services/policy_engine/enforcement"
	"gopkg.in/yaml.v3"
)

// PolicyEngine holds the loaded PII classifications and provides
// scanning and redaction over text.
type PolicyEngine struct {
	Classifiers []Classification
}

// NewPolicyEngine initializes a new instance of the PolicyEngine.
//
// It loads the PII pattern definitions embedded in the binary via the
// enforcement package, compiles all regex patterns, and sorts the
// classifications by priority.
//
// Returns an error if the embedded YAML is malformed or contains an
// invalid regex.
func NewPolicyEngine() (*PolicyEngine, error) {
	var classificationFile PolicyEngineClassificationFile
	if err := yaml.Unmarshal(enforcement.PIIClassificationPatterns, &classificationFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded policy file: %w", err)
	}

	if err := classificationFile.CompileRegexes(); err != nil {
		return nil, fmt.Errorf("failed to compile a regex %w", err)
	}

	classificationFile.SortByPriority()

	engine := &PolicyEngine{Classifiers: classificationFile.ClassificationPatterns}
	return engine, nil
}

// ClassifyData performs a quick boolean check on a byte slice.
//
// It iterates through classifications by priority and returns the name
// of the first classification that matches. If nothing matches, it
// returns "public".
func (e *PolicyEngine) ClassifyData(data []byte) string {
	for _, classifier := range e.Classifiers {
		for _, re := range classifier.CompiledPatterns {
			if re.Match(data) {
				return classifier.Name
			}
		}
	}
	return "public"
}

// ScanContent audits a string line by line against every pattern and
// reports each match with its line number and classification.
func (e *PolicyEngine) ScanContent(content string) []ScanFinding {
	var findings []ScanFinding
	lines := strings.Split(content, "\n")
	for lineNum, line := range lines {
		for _, classifier := range e.Classifiers {
			for _, pattern := range classifier.Patterns {
				match := pattern.compiledPattern.FindString(line)
				if match != "" {
					finding := ScanFinding{
						LineNumber:         lineNum + 1,
						MatchedContent:     strings.TrimSpace(match),
						ClassificationName: classifier.Name,
						PatternId:          pattern.Id,
						PatternDescription: pattern.Description,
						Confidence:         pattern.Confidence,
					}
					findings = append(findings, finding)
				}
			}
		}
	}
	return findings
}

// Redact replaces every match of every classification pattern with the
// classification's mask string. Classifications without a mask fall
// back to "[REDACTED]".
func (e *PolicyEngine) Redact(content string) string {
	for _, classifier := range e.Classifiers {
		mask := classifier.Mask
		if mask == "" {
			mask = "[REDACTED]"
		}
		for _, re := range classifier.CompiledPatterns {
			content = re.ReplaceAllString(content, mask)
		}
	}
	return content
}
