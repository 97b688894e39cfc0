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

package snapshot

import "errors"

// Error definitions for snapshot views.
var (
	// ErrSnapshotNotFound indicates the requested snapshot does not exist.
	ErrSnapshotNotFound = errors.New("snapshot: snapshot not found")
	// ErrSnapshotIDRequired indicates a compare request without both ids.
	ErrSnapshotIDRequired = errors.New("snapshot: snapshot1 and snapshot2 are required")
	// ErrSameSnapshot indicates a snapshot compared with itself.
	ErrSameSnapshot = errors.New("snapshot: comparing a snapshot with itself is not applicable")
	// ErrInvalidEntryType indicates a manifest entry that is neither file nor dir.
	ErrInvalidEntryType = errors.New("snapshot: manifest entry type must be file or dir")
)
