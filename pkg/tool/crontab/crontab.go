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
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Dialect selects the cron grammar used when parsing an expression.
type Dialect string

const (
	DialectUnix   Dialect = "unix"
	DialectQuartz Dialect = "quartz"
)

var quartzParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// MinIntervalError reports two consecutive executions closer together than the
// allowed minimum. It is distinct from a parse error so callers can tell a
// broken expression from one that merely fires too often.
type MinIntervalError struct {
	First    time.Time
	Second   time.Time
	Interval time.Duration
}

func (e *MinIntervalError) Error() string {
	return fmt.Sprintf("executions at %s and %s are %s apart, minimum allowed interval is %s",
		e.First.Format(time.RFC3339), e.Second.Format(time.RFC3339), e.Second.Sub(e.First), e.Interval)
}

// Parse parses expression with the requested dialect.
func Parse(expression string, dialect Dialect) (cron.Schedule, error) {
	switch dialect {
	case DialectQuartz:
		return quartzParser.Parse(normalizeQuartz(expression))
	case DialectUnix, "":
		return cron.ParseStandard(expression)
	default:
		return nil, fmt.Errorf("unknown cron dialect %q", dialect)
	}
}

// NextTwoExecutions computes the next two firing instants after now. An error
// is returned when the expression is unparsable or never fires again.
func NextTwoExecutions(expression string, dialect Dialect) (time.Time, time.Time, error) {
	return nextTwoFrom(expression, dialect, time.Now())
}

func nextTwoFrom(expression string, dialect Dialect, from time.Time) (time.Time, time.Time, error) {
	sched, err := Parse(expression, dialect)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid cron expression %q: %v", expression, err)
	}

	first := sched.Next(from)
	if first.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("cron expression %q has no upcoming execution", expression)
	}
	second := sched.Next(first)
	if second.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("cron expression %q has no second upcoming execution", expression)
	}

	return first, second, nil
}

// ValidateMinInterval fails with a MinIntervalError when the gap between the
// next two executions is below min.
func ValidateMinInterval(expression string, dialect Dialect, min time.Duration) error {
	return validateMinIntervalFrom(expression, dialect, min, time.Now())
}

func validateMinIntervalFrom(expression string, dialect Dialect, min time.Duration, from time.Time) error {
	first, second, err := nextTwoFrom(expression, dialect, from)
	if err != nil {
		return err
	}

	if second.Sub(first) < min {
		return &MinIntervalError{First: first, Second: second, Interval: min}
	}

	return nil
}

// normalizeQuartz maps quartz-only syntax onto what the seconds-field parser
// understands: "?" behaves as "*", and a trailing year field is dropped.
func normalizeQuartz(expression string) string {
	fields := strings.Fields(expression)
	if len(fields) == 7 {
		fields = fields[:6]
	}
	for i, f := range fields {
		if f == "?" {
			fields[i] = "*"
		}
	}

	return strings.Join(fields, " ")
}
