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

package backup

import "errors"

// Error definitions for backup views.
var (
	// ErrBackupNotFound indicates the requested backup does not exist.
	ErrBackupNotFound = errors.New("backup: backup not found")
	// ErrBackupAgentMissing indicates a backup record without agent.
	ErrBackupAgentMissing = errors.New("backup: agent id cannot be empty")
	// ErrRepositoryNameEmpty indicates a repository without name.
	ErrRepositoryNameEmpty = errors.New("backup: repository name cannot be empty")
	// ErrScheduleNameEmpty indicates a schedule without name.
	ErrScheduleNameEmpty = errors.New("backup: schedule name cannot be empty")
	// ErrTagNameEmpty indicates a tag without name.
	ErrTagNameEmpty = errors.New("backup: tag name cannot be empty")
	// ErrTagNameDuplicate indicates a tag with the same name already exists.
	ErrTagNameDuplicate = errors.New("backup: tag name already exists")
)

// UnknownRepository is shown when no repository can be resolved for a backup.
const UnknownRepository = "Unknown"
