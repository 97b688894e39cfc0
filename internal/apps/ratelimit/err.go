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

package ratelimit

import "errors"

// Error definitions for rate limiting.
var (
	// ErrTooManyRequests is returned to clients that exhausted their bucket.
	ErrTooManyRequests = errors.New("ratelimit: too many requests")
	// ErrIPBanned is returned to clients with an active ban.
	ErrIPBanned = errors.New("ratelimit: ip address is banned")
	// ErrInvalidConfig indicates a config without endpoint or with a non-positive quota.
	ErrInvalidConfig = errors.New("ratelimit: endpoint, requests_per_period and period_seconds are required")
	// ErrInvalidIP indicates a ban without IP address.
	ErrInvalidIP = errors.New("ratelimit: ip address cannot be empty")
)

// Reasons recorded on blocked requests.
const (
	ReasonRateLimited = "rate_limited"
	ReasonIPBanned    = "ip_banned"
)
