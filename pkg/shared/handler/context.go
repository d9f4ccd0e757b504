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

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	e "github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/errors"
	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/log"
)

// Context is the per-request context handlers pass down into services.
type Context struct {
	Logger       *zap.SugaredLogger
	Err          error
	Resp         interface{}
	Account      string
	UserName     string
	RequestID    string
	UnAuthorized bool
}

func NewContext(c *gin.Context) *Context {
	logger := log.SugaredLogger()
	requestID := c.GetHeader("X-Request-ID")
	if requestID != "" {
		logger = logger.With("requestID", requestID)
	}

	return &Context{
		Logger:    logger,
		Account:   c.GetHeader("X-Account"),
		UserName:  c.GetHeader("X-User"),
		RequestID: requestID,
	}
}

type responseBody struct {
	ResultCode  int         `json:"resultCode"`
	ErrorMsg    string      `json:"errorMsg,omitempty"`
	Description string      `json:"description,omitempty"`
	Extra       interface{} `json:"extra,omitempty"`
}

// JSONResponse renders ctx as the handler's JSON reply. Business error codes
// above the HTTP range are reported with status 400.
func JSONResponse(c *gin.Context, ctx *Context) {
	if ctx.UnAuthorized {
		c.JSON(http.StatusUnauthorized, responseBody{
			ResultCode: http.StatusUnauthorized,
			ErrorMsg:   "Unauthorized",
		})
		return
	}

	if ctx.Err != nil {
		status := http.StatusInternalServerError
		body := responseBody{ResultCode: status, ErrorMsg: ctx.Err.Error()}

		if httpErr, ok := ctx.Err.(e.IHTTPError); ok {
			status = httpErr.Code()
			if status >= 600 {
				status = http.StatusBadRequest
			}
			body = responseBody{
				ResultCode:  httpErr.Code(),
				ErrorMsg:    httpErr.Error(),
				Description: httpErr.Desc(),
			}
			if extra := httpErr.Extra(); len(extra) > 0 {
				body.Extra = extra
			}
		}

		c.JSON(status, body)
		return
	}

	if ctx.Resp == nil {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
		return
	}

	c.JSON(http.StatusOK, ctx.Resp)
}
