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

// Package executor runs registration work off the request path on a shared
// bounded worker pool.
package executor

import (
	"fmt"

	"github.com/vigneswara-propelo/harness-core-sub207/pkg/tool/log"
)

type task struct {
	name string
	run  func()
}

type Executor struct {
	queue chan *task
}

func New(queueSize int) *Executor {
	return &Executor{
		queue: make(chan *task, queueSize),
	}
}

// Run blocks until stopCh closes, draining whatever is already queued before
// returning so submitted registrations are not lost on shutdown.
func (e *Executor) Run(workers int, stopCh <-chan struct{}) {
	for i := 0; i < workers; i++ {
		go e.worker(stopCh)
	}

	<-stopCh
}

func (e *Executor) worker(stopCh <-chan struct{}) {
	for {
		select {
		case t := <-e.queue:
			e.process(t)
		case <-stopCh:
			for {
				select {
				case t := <-e.queue:
					e.process(t)
				default:
					return
				}
			}
		}
	}
}

func (e *Executor) process(t *task) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Task %s panicked: %v", t.name, r)
		}
	}()

	t.run()
}

// Submit enqueues a task without ever blocking the caller. A full queue is a
// submission failure the caller handles, not a stall.
func (e *Executor) Submit(name string, run func()) error {
	select {
	case e.queue <- &task{name: name, run: run}:
		return nil
	default:
		return fmt.Errorf("task queue is full, %s was not submitted", name)
	}
}
