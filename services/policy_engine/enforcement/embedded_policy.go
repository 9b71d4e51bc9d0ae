// Copyright (C) 2026 Ritesh Bawaskar
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
This file serves as the bridge between the build system and the runtime logic. It utilizes the Go
embed package to bake the pii_classification_patterns.yaml file directly into the compiled binary.
This ensures that the masking rules are immutable at runtime and travel with the executable.
*/

package enforcement

import (
	_ "embed"
)

// PIIClassificationPatterns holds the raw byte content of the
// 'pii_classification_patterns.yaml' file.
//
// This variable is populated at compile-time using the Go 'embed'
// directive, so the masking rules cannot be tampered with on the host
// filesystem without recompiling the application.
//
// Usage:
//
//	// Pass these bytes directly to yaml.Unmarshal
//	err := yaml.Unmarshal(enforcement.PIIClassificationPatterns, &targetStruct)
//
//go:embed pii_classification_patterns.yaml
var PIIClassificationPatterns []byte
