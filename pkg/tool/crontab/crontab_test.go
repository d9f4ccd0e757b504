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

package crontab

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

func TestNextTwoExecutions(t *testing.T) {
	first, second, err := nextTwoFrom("*/10 * * * *", DialectUnix, anchor)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, second.Sub(first))

	first, second, err = nextTwoFrom("0 0 */2 * * ?", DialectQuartz, anchor)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, second.Sub(first))
}

func TestNextTwoExecutionsQuartzWithYearField(t *testing.T) {
	_, _, err := nextTwoFrom("0 0 12 * * ? *", DialectQuartz, anchor)
	assert.NoError(t, err)
}

func TestNextTwoExecutionsUnparsable(t *testing.T) {
	_, _, err := nextTwoFrom("not a cron", DialectUnix, anchor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")

	_, _, err = nextTwoFrom("* * * * *", "martian", anchor)
	assert.Error(t, err)
}

func TestValidateMinInterval(t *testing.T) {
	err := validateMinIntervalFrom("*/1 * * * *", DialectUnix, 5*time.Minute, anchor)
	require.Error(t, err)

	var minErr *MinIntervalError
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, 5*time.Minute, minErr.Interval)
	assert.Contains(t, err.Error(), "minimum allowed interval is 5m0s")

	assert.NoError(t, validateMinIntervalFrom("*/10 * * * *", DialectUnix, 5*time.Minute, anchor))
	assert.NoError(t, validateMinIntervalFrom("*/5 * * * *", DialectUnix, 5*time.Minute, anchor))
}
