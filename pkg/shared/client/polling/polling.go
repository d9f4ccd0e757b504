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

// Package polling talks to the polling resource service that periodically
// checks artifact/manifest repositories and reports new versions back.
package polling

import (
	configbase "github.com/vigneswara-propelo/harness-core-sub207/pkg/config"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/httpclient"
)

type Client struct {
	*httpclient.Client
}

func New() *Client {
	return &Client{
		Client: httpclient.New(
			httpclient.SetHostURL(configbase.PollingServiceAddress()),
			httpclient.SetBaseURI("/api/v1"),
			httpclient.SetClientTimeout(configbase.RequestTimeout()),
		),
	}
}

type subscribeRequest struct {
	Intent string `json:"intent"`
}

type subscribeResponse struct {
	PollingDocID string `json:"polling_doc_id"`
}

// Subscribe registers the encoded polling intent and returns the id of the
// polling document the service created for it.
func (c *Client) Subscribe(encodedIntent string) (string, error) {
	res := &subscribeResponse{}
	_, err := c.Post("/polling/subscribe", httpclient.SetBody(&subscribeRequest{Intent: encodedIntent}), httpclient.SetResult(res))
	if err != nil {
		return "", err
	}

	return res.PollingDocID, nil
}

type unsubscribeResponse struct {
	Removed bool `json:"removed"`
}

func (c *Client) Unsubscribe(encodedIntent string) (bool, error) {
	res := &unsubscribeResponse{}
	_, err := c.Post("/polling/unsubscribe", httpclient.SetBody(&subscribeRequest{Intent: encodedIntent}), httpclient.SetResult(res))
	if err != nil {
		return false, err
	}

	return res.Removed, nil
}
