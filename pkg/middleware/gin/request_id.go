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

package gin

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/setting"
)

// RequestID tags every request with an id, honoring one supplied by the
// caller so traces span service boundaries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(setting.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			c.Request.Header.Set(setting.RequestIDHeader, requestID)
		}

		c.Set(setting.RequestID, requestID)
		c.Writer.Header().Set(setting.RequestIDHeader, requestID)

		c.Next()
	}
}
