/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cost

import "errors"

// Error definitions for cost views.
var (
	// ErrInvalidHorizon indicates a forecast horizon outside 1..MaxHorizonMonths.
	ErrInvalidHorizon = errors.New("cost: forecast horizon must be between 1 and 60 months")
	// ErrInvalidPeriod indicates a sample period that is not YYYY-MM or RFC 3339.
	ErrInvalidPeriod = errors.New("cost: period must be YYYY-MM or an RFC 3339 timestamp")
	// ErrNegativeAmount indicates a negative cost or size.
	ErrNegativeAmount = errors.New("cost: cost and size must not be negative")
	// ErrRepositoryRequired indicates a sample without repository.
	ErrRepositoryRequired = errors.New("cost: repository_id is required")
)

// MaxHorizonMonths bounds the forecast horizon.
const MaxHorizonMonths = 60
