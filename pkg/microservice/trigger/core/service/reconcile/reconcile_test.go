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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTemplate = `
pipeline:
  identifier: deploy
  stages:
    - stage:
        identifier: build
        type: CI
        spec:
          image: <+input>
          mode: <+input>.allowedValues(fast, safe)
          tag: latest
`

func TestFlattenPaths(t *testing.T) {
	doc, err := Flatten(sampleTemplate)
	require.NoError(t, err)

	var fqns []string
	for _, e := range doc.Entries() {
		fqns = append(fqns, e.FQN)
	}
	assert.Equal(t, []string{
		"pipeline.identifier",
		"pipeline.stages[0].stage.identifier",
		"pipeline.stages[0].stage.type",
		"pipeline.stages[0].stage.spec.image",
		"pipeline.stages[0].stage.spec.mode",
		"pipeline.stages[0].stage.spec.tag",
	}, fqns)

	id, ok := doc.Get("pipeline.stages[0].stage.identifier")
	require.True(t, ok)
	assert.Equal(t, KindIdentifier, id.Kind)

	typ, ok := doc.Get("pipeline.stages[0].stage.type")
	require.True(t, ok)
	assert.Equal(t, KindDiscriminator, typ.Kind)
}

func TestFlattenEmptyDocument(t *testing.T) {
	doc, err := Flatten("")
	require.NoError(t, err)
	assert.True(t, doc.Empty())

	doc, err = Flatten("# only a comment\n")
	require.NoError(t, err)
	assert.True(t, doc.Empty())
}

func TestDiffMatchingInput(t *testing.T) {
	template, err := Flatten(sampleTemplate)
	require.NoError(t, err)
	input, err := Flatten(`
pipeline:
  identifier: deploy
  stages:
    - stage:
        identifier: build
        type: CI
        spec:
          image: alpine
          mode: fast
          tag: latest
`)
	require.NoError(t, err)

	assert.Empty(t, Diff(template, input))
}

func TestDiffRemovedField(t *testing.T) {
	template, err := Flatten("a:\n  c: <+input>\n")
	require.NoError(t, err)
	input, err := Flatten("a:\n  b: stale\n  c: kept\n")
	require.NoError(t, err)

	diff := Diff(template, input)
	require.Len(t, diff, 1)
	assert.Equal(t, "a.b", diff[0].FQN)
	assert.Equal(t, reasonNotRuntimeInput, diff[0].Reason)
}

func TestDiffMissingRuntimeInput(t *testing.T) {
	template, err := Flatten("a:\n  b: <+input>\n  c: <+input>\n")
	require.NoError(t, err)
	input, err := Flatten("a:\n  b: supplied\n")
	require.NoError(t, err)

	diff := Diff(template, input)
	require.Len(t, diff, 1)
	assert.Equal(t, "a.c", diff[0].FQN)
	assert.Equal(t, reasonMissingFromTrigger, diff[0].Reason)
}

func TestDiffEmptyTemplateNonEmptyInput(t *testing.T) {
	template, err := Flatten("")
	require.NoError(t, err)
	input, err := Flatten("a:\n  b: orphan\n")
	require.NoError(t, err)

	diff := Diff(template, input)
	require.Len(t, diff, 1)
	assert.Equal(t, "a.b", diff[0].FQN)
	assert.Equal(t, reasonPipelineEmptied, diff[0].Reason)
}

func TestDiffAnchorMismatch(t *testing.T) {
	template, err := Flatten("stage:\n  type: CI\n  identifier: build\n")
	require.NoError(t, err)
	input, err := Flatten("stage:\n  type: CD\n  identifier: build\n")
	require.NoError(t, err)

	diff := Diff(template, input)
	require.Len(t, diff, 1)
	assert.Equal(t, "stage.type", diff[0].FQN)
	assert.Equal(t, `expected "CI", found "CD"`, diff[0].Reason)
}

func TestDiffAllowedValues(t *testing.T) {
	template, err := Flatten("mode: <+input>.allowedValues(fast, safe)\n")
	require.NoError(t, err)
	input, err := Flatten("mode: reckless\n")
	require.NoError(t, err)

	diff := Diff(template, input)
	require.Len(t, diff, 1)
	assert.Equal(t, "mode", diff[0].FQN)
	assert.Contains(t, diff[0].Reason, `"reckless" is not in the allowed values`)
}

func TestDiffFixedValueMismatch(t *testing.T) {
	template, err := Flatten("tag: latest\n")
	require.NoError(t, err)
	input, err := Flatten("tag: v2\n")
	require.NoError(t, err)

	diff := Diff(template, input)
	require.Len(t, diff, 1)
	assert.Contains(t, diff[0].Reason, `expected fixed value "latest"`)
}

func TestDiffRegexValidator(t *testing.T) {
	template, err := Flatten("tag: <+input>.regex(^v[0-9]+$)\n")
	require.NoError(t, err)

	good, err := Flatten("tag: v12\n")
	require.NoError(t, err)
	assert.Empty(t, Diff(template, good))

	bad, err := Flatten("tag: nightly\n")
	require.NoError(t, err)
	diff := Diff(template, bad)
	require.Len(t, diff, 1)
	assert.Contains(t, diff[0].Reason, "does not match regex")
}

func TestRepairKeepsValidValues(t *testing.T) {
	template, err := Flatten(sampleTemplate)
	require.NoError(t, err)
	input, err := Flatten(`
pipeline:
  identifier: deploy
  stages:
    - stage:
        identifier: build
        type: CI
        spec:
          image: alpine
          mode: fast
          tag: latest
`)
	require.NoError(t, err)

	repaired := Repair(template, input)
	image, ok := repaired.Get("pipeline.stages[0].stage.spec.image")
	require.True(t, ok)
	assert.Equal(t, "alpine", image.Value)

	// repairing an already-valid input is a fixed point
	assert.Empty(t, Diff(template, repaired))
	again := Repair(template, repaired)
	assert.Equal(t, len(repaired.Entries()), len(again.Entries()))
	for i, e := range repaired.Entries() {
		assert.Equal(t, e.Value, again.Entries()[i].Value)
	}
}

func TestRepairReplacesInvalidAndMissing(t *testing.T) {
	template, err := Flatten(sampleTemplate)
	require.NoError(t, err)
	input, err := Flatten(`
pipeline:
  identifier: deploy
  stages:
    - stage:
        identifier: build
        type: CD
        spec:
          mode: reckless
          dropped: value
`)
	require.NoError(t, err)

	repaired := Repair(template, input)

	typ, _ := repaired.Get("pipeline.stages[0].stage.type")
	assert.Equal(t, "CI", typ.Value)

	mode, _ := repaired.Get("pipeline.stages[0].stage.spec.mode")
	assert.Equal(t, RuntimeInputMarker, mode.Value)

	image, _ := repaired.Get("pipeline.stages[0].stage.spec.image")
	assert.Equal(t, RuntimeInputMarker, image.Value)

	_, ok := repaired.Get("pipeline.stages[0].stage.spec.dropped")
	assert.False(t, ok)
}

func TestYAMLRoundTrip(t *testing.T) {
	doc, err := Flatten(sampleTemplate)
	require.NoError(t, err)

	out, err := doc.YAML()
	require.NoError(t, err)

	back, err := Flatten(out)
	require.NoError(t, err)
	require.Equal(t, len(doc.Entries()), len(back.Entries()))
	for i, e := range doc.Entries() {
		assert.Equal(t, e.FQN, back.Entries()[i].FQN)
		assert.Equal(t, e.Value, back.Entries()[i].Value)
	}
}
