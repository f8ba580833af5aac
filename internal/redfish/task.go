/*
Copyright (c) 2024 Fsas Technologies Inc., or its subsidiaries. All Rights Reserved.

Licensed under the Mozilla Public License Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://mozilla.org/MPL/2.0/


Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package redfish

import (
	"context"
	"fmt"
	"time"

	"github.com/stmcginnis/gofish/common"
	"github.com/stmcginnis/gofish/redfish"
)

const (
	taskPollInterval = 3 * time.Second
	taskPollTimeout  = 10 * time.Minute
)

// isTaskFinished reports whether the state is terminal.
func isTaskFinished(state redfish.TaskState) bool {
	switch state {
	case redfish.CompletedTaskState, redfish.ExceptionTaskState, redfish.CancelledTaskState,
		redfish.KilledTaskState, redfish.InterruptedTaskState, redfish.SuspendedTaskState:
		return true
	default:
		return false
	}
}

func isTaskFinishedSuccessfully(state redfish.TaskState) bool {
	return state == redfish.CompletedTaskState
}

// AwaitTask polls the task at taskURI until it reaches a terminal state
// or the poll bound expires. It returns true when the task completed
// with an OK status. This is a cooperative wait: a fetch failure of any
// kind aborts the wait with that error, there is no retry policy.
func (c *Client) AwaitTask(ctx context.Context, taskURI string) (bool, error) {
	return c.awaitTask(ctx, taskURI, taskPollInterval, taskPollTimeout)
}

func (c *Client) awaitTask(ctx context.Context, taskURI string, interval, timeout time.Duration) (bool, error) {
	start := time.Now()
	for {
		var task taskDoc
		if _, err := c.getInto(ctx, taskURI, &task); err != nil {
			return false, fmt.Errorf("retrieving task %s: %w", taskURI, err)
		}

		c.log.V(1).Info("task polled", "task", taskURI, "state", task.TaskState)

		if isTaskFinished(task.TaskState) {
			if isTaskFinishedSuccessfully(task.TaskState) {
				return task.TaskStatus == common.OKHealth, nil
			}
			return false, fmt.Errorf("task %s finished with state %s", taskURI, task.TaskState)
		}

		if time.Since(start) >= timeout {
			return false, &TimeoutError{Operation: "task " + taskURI, Limit: timeout}
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(interval):
		}
	}
}
