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

package executor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubmitRunsTask(t *testing.T) {
	e := New(8)
	stopCh := make(chan struct{})
	defer close(stopCh)
	go e.Run(2, stopCh)

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := e.Submit("test-task", func() {
			defer wg.Done()
			mu.Lock()
			seen++
			mu.Unlock()
		})
		assert.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, 5, seen)
}

func TestSubmitFullQueue(t *testing.T) {
	e := New(1)

	// no workers running, so the second submission has nowhere to go
	assert.NoError(t, e.Submit("first", func() {}))
	err := e.Submit("second", func() {})
	assert.ErrorContains(t, err, "queue is full")
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	e := New(4)
	stopCh := make(chan struct{})
	defer close(stopCh)
	go e.Run(1, stopCh)

	assert.NoError(t, e.Submit("boom", func() { panic("boom") }))

	done := make(chan struct{})
	assert.NoError(t, e.Submit("after", func() { close(done) }))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}
