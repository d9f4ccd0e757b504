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

package trigger

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/models"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/repository/mongodb"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/microservice/trigger/core/service/reconcile"
	e "github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/errors"
)

// ReconcileResult reports how a trigger's stored runtime inputs compare to
// the pipeline's current runtime-input template.
type ReconcileResult struct {
	Identifier string                 `json:"identifier"`
	InSync     bool                   `json:"in_sync"`
	Entries    []*reconcile.DiffEntry `json:"entries,omitempty"`
}

// DiffTriggerInputs fetches the pipeline's current runtime-input template
// and diffs the trigger's stored inputs against it. It never modifies the
// trigger.
func DiffTriggerInputs(opt *mongodb.TriggerFindOption, logger *zap.SugaredLogger) (*ReconcileResult, error) {
	t, template, input, err := loadReconcileDocs(opt, logger)
	if err != nil {
		return nil, err
	}

	diff := reconcile.Diff(template, input)
	return &ReconcileResult{
		Identifier: t.Identifier,
		InSync:     len(diff) == 0,
		Entries:    diff,
	}, nil
}

// RepairTriggerInputs rewrites the trigger's runtime inputs into the
// template's current shape, persisting the result with the usual version
// bump.
func RepairTriggerInputs(opt *mongodb.TriggerFindOption, logger *zap.SugaredLogger) (*models.Trigger, error) {
	t, template, input, err := loadReconcileDocs(opt, logger)
	if err != nil {
		return nil, err
	}

	repairedYAML := ""
	if !template.Empty() {
		repaired := reconcile.Repair(template, input)
		repairedYAML, err = repaired.YAML()
		if err != nil {
			return nil, e.ErrRepairTrigger.AddErr(err)
		}
	}

	updated, err := setRuntimeInputFragment(t.YAML, repairedYAML)
	if err != nil {
		return nil, e.ErrRepairTrigger.AddErr(err)
	}
	t.YAML = updated

	if err := mongodb.NewTriggerColl().Update(t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, e.ErrRepairTrigger.AddDesc(fmt.Sprintf(
				"trigger %s was modified concurrently, fetch the latest version and retry", t.Identifier))
		}
		logger.Errorf("Failed to persist repaired inputs for trigger %s: %v", t.Identifier, err)
		return nil, e.ErrRepairTrigger.AddErr(err)
	}
	return t, nil
}

func loadReconcileDocs(opt *mongodb.TriggerFindOption, logger *zap.SugaredLogger) (*models.Trigger, *reconcile.Document, *reconcile.Document, error) {
	t, err := mongodb.NewTriggerColl().Find(opt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil, nil, e.ErrTriggerNotFound.AddDesc(fmt.Sprintf("trigger %s not found", opt.Identifier))
		}
		return nil, nil, nil, e.ErrReconcileTrigger.AddErr(err)
	}

	pipelineCli, _ := clients()
	templateYAML, err := pipelineCli.RuntimeInputTemplate(pipelineRefOf(t))
	if err != nil {
		logger.Errorf("Failed to fetch runtime-input template for pipeline %s: %v", t.PipelineIdentifier, err)
		return nil, nil, nil, e.ErrReconcileTrigger.AddErr(err)
	}

	template, err := reconcile.Flatten(templateYAML)
	if err != nil {
		return nil, nil, nil, e.ErrReconcileTrigger.AddDesc(fmt.Sprintf("invalid runtime-input template: %v", err))
	}

	fragment, err := runtimeInputFragment(t.YAML)
	if err != nil {
		return nil, nil, nil, e.ErrReconcileTrigger.AddDesc(fmt.Sprintf("invalid trigger yaml: %v", err))
	}
	input, err := reconcile.Flatten(fragment)
	if err != nil {
		return nil, nil, nil, e.ErrReconcileTrigger.AddDesc(fmt.Sprintf("invalid trigger runtime inputs: %v", err))
	}

	return t, template, input, nil
}

// triggerDefinition is the subset of the trigger YAML the reconciler cares
// about. The runtime inputs live as a nested YAML string under
// trigger.inputYaml, with a top-level inputYaml fallback for bare documents.
type triggerDefinition struct {
	Trigger struct {
		InputYAML string `yaml:"inputYaml"`
	} `yaml:"trigger"`
	InputYAML string `yaml:"inputYaml"`
}

func runtimeInputFragment(triggerYAML string) (string, error) {
	if triggerYAML == "" {
		return "", nil
	}

	def := &triggerDefinition{}
	if err := yaml.Unmarshal([]byte(triggerYAML), def); err != nil {
		return "", err
	}
	if def.Trigger.InputYAML != "" {
		return def.Trigger.InputYAML, nil
	}
	return def.InputYAML, nil
}

// setRuntimeInputFragment writes the fragment back into the trigger YAML in
// place, preserving every other key. An empty starting document becomes a
// minimal trigger document.
func setRuntimeInputFragment(triggerYAML, fragment string) (string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(triggerYAML), &root); err != nil {
		return "", err
	}

	leaf := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fragment, Style: yaml.LiteralStyle}
	if fragment == "" {
		leaf.Style = 0
	}

	if root.Kind == 0 || len(root.Content) == 0 {
		doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		setMappingKey(doc, "inputYaml", leaf)
		out, err := yaml.Marshal(doc)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return "", fmt.Errorf("trigger yaml is not a mapping")
	}

	target := top
	if trig := mappingValue(top, "trigger"); trig != nil && trig.Kind == yaml.MappingNode {
		target = trig
	}
	setMappingKey(target, "inputYaml", leaf)

	out, err := yaml.Marshal(&root)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func setMappingKey(node *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			node.Content[i+1] = value
			return
		}
	}
	node.Content = append(node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
}
