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

// Package pipeline exposes the pipeline service endpoints the trigger
// service depends on: the runtime-input template and pipeline metadata.
package pipeline

import (
	"fmt"

	configbase "github.com/vigneswara-propelo/harness-core-sub207/pkg/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/httpclient"
)

const (
	StoreTypeInline = "inline"
	StoreTypeRemote = "remote"
)

type Client struct {
	*httpclient.Client
}

func New() *Client {
	return &Client{
		Client: httpclient.New(
			httpclient.SetHostURL(configbase.PipelineServiceAddress()),
			httpclient.SetBaseURI("/api/v1"),
			httpclient.SetClientTimeout(configbase.RequestTimeout()),
		),
	}
}

// Ref addresses one pipeline.
type Ref struct {
	AccountID  string
	OrgID      string
	ProjectID  string
	Identifier string
}

func (r *Ref) path() string {
	return fmt.Sprintf("/pipelines/%s", r.Identifier)
}

func (r *Ref) scopeParams() map[string]string {
	return map[string]string{
		"accountIdentifier": r.AccountID,
		"orgIdentifier":     r.OrgID,
		"projectIdentifier": r.ProjectID,
	}
}

type templateResponse struct {
	YAML string `json:"yaml"`
}

// RuntimeInputTemplate returns the pipeline's current runtime-input template
// YAML, or an empty string when the pipeline declares no runtime inputs.
func (c *Client) RuntimeInputTemplate(ref *Ref) (string, error) {
	res := &templateResponse{}
	_, err := c.Get(ref.path()+"/runtime-input-template",
		httpclient.SetQueryParams(ref.scopeParams()), httpclient.SetResult(res))
	if err != nil {
		return "", err
	}

	return res.YAML, nil
}

// Metadata carries the pipeline facts validation dispatches on.
type Metadata struct {
	StoreType string `json:"store_type"`
	ServiceV2 bool   `json:"service_v2"`
}

func (c *Client) Metadata(ref *Ref) (*Metadata, error) {
	res := &Metadata{}
	_, err := c.Get(ref.path()+"/metadata",
		httpclient.SetQueryParams(ref.scopeParams()), httpclient.SetResult(res))
	if err != nil {
		return nil, err
	}

	return res, nil
}

// StoreType reports whether the pipeline definition lives inline or in a
// remote repository.
func (c *Client) StoreType(ref *Ref) (string, error) {
	meta, err := c.Metadata(ref)
	if err != nil {
		return "", err
	}

	return meta.StoreType, nil
}
