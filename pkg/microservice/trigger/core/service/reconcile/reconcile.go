/*
Copyright 2023 The KodeRover Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package reconcile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// RuntimeInputMarker marks a template field whose value is supplied by the
// trigger at execution time, optionally suffixed with validators such as
// "<+input>.allowedValues(a,b)" or "<+input>.regex(pat)".
const RuntimeInputMarker = "<+input>"

const (
	reasonNotRuntimeInput    = "field either not present in pipeline or not a runtime input"
	reasonMissingFromTrigger = "trigger does not contain pipeline runtime input"
	reasonPipelineEmptied    = "pipeline no longer contains runtime input"
)

// DiffEntry reports one FQN whose trigger input no longer lines up with the
// pipeline template.
type DiffEntry struct {
	FQN    string `json:"fqn"`
	Reason string `json:"reason"`
}

// Diff walks the template leaves in order and reports every leaf the trigger
// input is missing, mismatching or failing validation on, followed by
// trigger leaves the template no longer knows about. The output order is
// fully determined by the two documents.
func Diff(template, input *Document) []*DiffEntry {
	var out []*DiffEntry

	if template.Empty() && !input.Empty() {
		for _, e := range input.Entries() {
			out = append(out, &DiffEntry{FQN: e.FQN, Reason: reasonPipelineEmptied})
		}
		return out
	}
	if input.Empty() {
		for _, e := range template.Entries() {
			out = append(out, &DiffEntry{FQN: e.FQN, Reason: reasonMissingFromTrigger})
		}
		return out
	}

	matched := map[string]bool{}
	for _, te := range template.Entries() {
		ie, ok := input.Get(te.FQN)
		if !ok {
			if !consumeSubtree(input, te.FQN, matched) {
				out = append(out, &DiffEntry{FQN: te.FQN, Reason: reasonMissingFromTrigger})
			}
			continue
		}

		matched[te.FQN] = true
		switch te.Kind {
		case KindDiscriminator, KindIdentifier:
			if te.Value != ie.Value {
				out = append(out, &DiffEntry{
					FQN:    te.FQN,
					Reason: fmt.Sprintf("expected %q, found %q", te.Value, ie.Value),
				})
			}
		default:
			if err := validateStatic(te.Value, ie.Value); err != nil {
				out = append(out, &DiffEntry{FQN: te.FQN, Reason: err.Error()})
			}
		}
	}

	for _, ie := range input.Entries() {
		if !matched[ie.FQN] {
			out = append(out, &DiffEntry{FQN: ie.FQN, Reason: reasonNotRuntimeInput})
		}
	}
	return out
}

// consumeSubtree marks every input leaf nested under fqn as matched. A
// template leaf holding "<+input>" may legitimately expand into a subtree on
// the trigger side.
func consumeSubtree(input *Document, fqn string, matched map[string]bool) bool {
	found := false
	for _, e := range input.Entries() {
		if strings.HasPrefix(e.FQN, fqn+".") || strings.HasPrefix(e.FQN, fqn+"[") {
			matched[e.FQN] = true
			found = true
		}
	}
	return found
}

// Repair rebuilds the trigger input in the template's exact shape. Trigger
// values that still validate are carried over, anchors come from the
// template, and runtime inputs with no usable trigger value fall back to the
// input marker so the caller re-prompts for them.
func Repair(template, input *Document) *Document {
	out := newDocument()
	for _, te := range template.Entries() {
		entry := &Entry{FQN: te.FQN, Kind: te.Kind, Value: te.Value, tag: te.tag}

		if te.Kind == KindValue {
			if ie, ok := input.Get(te.FQN); ok && validateStatic(te.Value, ie.Value) == nil {
				entry.Value = ie.Value
				entry.tag = ie.tag
			} else if IsRuntimeInput(te.Value) {
				entry.Value = RuntimeInputMarker
				entry.tag = "!!str"
			}
		}
		out.add(entry)
	}
	return out
}

func IsRuntimeInput(value string) bool {
	return strings.HasPrefix(value, RuntimeInputMarker)
}

var (
	allowedValuesRe = regexp.MustCompile(`^` + regexp.QuoteMeta(RuntimeInputMarker) + `\.allowedValues\((.*)\)$`)
	regexInputRe    = regexp.MustCompile(`^` + regexp.QuoteMeta(RuntimeInputMarker) + `\.regex\((.*)\)$`)
)

// validateStatic checks a trigger value against the template's declaration
// for the same FQN. A bare marker accepts anything, validator suffixes are
// enforced, and anything else is a fixed value requiring exact equality.
func validateStatic(templateVal, triggerVal string) error {
	if templateVal == RuntimeInputMarker {
		return nil
	}

	if m := allowedValuesRe.FindStringSubmatch(templateVal); m != nil {
		allowed := lo.Map(strings.Split(m[1], ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		})
		if !lo.Contains(allowed, triggerVal) {
			return fmt.Errorf("value %q is not in the allowed values [%s]", triggerVal, strings.Join(allowed, ", "))
		}
		return nil
	}

	if m := regexInputRe.FindStringSubmatch(templateVal); m != nil {
		re, err := regexp.Compile(m[1])
		if err != nil {
			return fmt.Errorf("template regex %q is invalid: %v", m[1], err)
		}
		if !re.MatchString(triggerVal) {
			return fmt.Errorf("value %q does not match regex %q", triggerVal, m[1])
		}
		return nil
	}

	if IsRuntimeInput(templateVal) {
		// unknown validator suffix, accept any supplied value
		return nil
	}

	if templateVal != triggerVal {
		return fmt.Errorf("expected fixed value %q, found %q", templateVal, triggerVal)
	}
	return nil
}
