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

var (
	//-----------------------------------------------------------------------------------------------
	// Standard Error
	//-----------------------------------------------------------------------------------------------

	// ErrInvalidParam ...
	ErrInvalidParam = NewHTTPError(400, "Bad Request")
	// ErrUnauthorized ...
	ErrUnauthorized = NewHTTPError(401, "Unauthorized")
	// ErrForbidden ...
	ErrForbidden = NewHTTPError(403, "Forbidden")
	// ErrNotFound ...
	ErrNotFound = NewHTTPError(404, "Request Not Found")
	// ErrInternalError ...
	ErrInternalError = NewHTTPError(500, "Internal Error")

	//-----------------------------------------------------------------------------------------------
	// Trigger APIs Range: 7000 - 7029
	//-----------------------------------------------------------------------------------------------

	// ErrCreateTrigger ...
	ErrCreateTrigger = NewHTTPError(7000, "failed to create trigger")
	// ErrTriggerAlreadyExists ...
	ErrTriggerAlreadyExists = NewHTTPError(7001, "trigger already exists")
	// ErrUpdateTrigger ...
	ErrUpdateTrigger = NewHTTPError(7002, "failed to update trigger")
	// ErrTriggerNotFound ...
	ErrTriggerNotFound = NewHTTPError(7003, "trigger not found")
	// ErrDeleteTrigger ...
	ErrDeleteTrigger = NewHTTPError(7004, "failed to delete trigger")
	// ErrListTriggers ...
	ErrListTriggers = NewHTTPError(7005, "failed to list triggers")
	// ErrGetTrigger ...
	ErrGetTrigger = NewHTTPError(7006, "failed to get trigger")
	// ErrToggleTrigger ...
	ErrToggleTrigger = NewHTTPError(7007, "failed to enable or disable trigger")
	// ErrTriggerValidation ...
	ErrTriggerValidation = NewHTTPError(7008, "trigger validation failed")

	//-----------------------------------------------------------------------------------------------
	// Reconciliation APIs Range: 7030 - 7039
	//-----------------------------------------------------------------------------------------------

	// ErrReconcileTrigger ...
	ErrReconcileTrigger = NewHTTPError(7030, "failed to reconcile trigger inputs")
	// ErrRepairTrigger ...
	ErrRepairTrigger = NewHTTPError(7031, "failed to repair trigger inputs")
)
