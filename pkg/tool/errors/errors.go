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

package errors

import (
	"regexp"
)

// IHTTPError ...
type IHTTPError interface {
	Code() int
	Error() string
	Desc() string
	Extra() map[string]interface{}
}

// HTTPError ...
type HTTPError struct {
	code  int
	err   string
	desc  string
	extra map[string]interface{}
}

// NewHTTPError ...
func NewHTTPError(code int, errStr string, args ...string) *HTTPError {
	var desc string
	if len(args) > 0 {
		desc = args[0]
	}

	return &HTTPError{
		code: code,
		err:  errStr,
		desc: desc,
	}
}

// Code ...
func (e *HTTPError) Code() int {
	return e.code
}

// Error ...
func (e *HTTPError) Error() string {
	return e.err
}

// Desc ...
func (e *HTTPError) Desc() string {
	return e.desc
}

// Extra ...
func (e *HTTPError) Extra() map[string]interface{} {
	extra := map[string]interface{}{}

	for k, v := range e.extra {
		extra[k] = v
	}

	return extra
}

// AddDesc returns a copy of the error carrying the given description, so that
// shared Err* vars are never mutated.
func (e *HTTPError) AddDesc(desc string) *HTTPError {
	err := *e
	err.desc = desc

	if matched, _ := regexp.MatchString(".*E11000 duplicate.*", desc); matched {
		err.desc = "duplicate key"
	}

	return &err
}

// AddErr ...
func (e *HTTPError) AddErr(er error) *HTTPError {
	err := *e
	err.desc = er.Error()
	return &err
}

// NewWithExtras ...
func NewWithExtras(e error, desc string, extra map[string]interface{}) error {
	if v, ok := e.(*HTTPError); ok {
		err := *v
		err.desc = desc
		err.extra = extra
		return &err
	}

	return e
}
