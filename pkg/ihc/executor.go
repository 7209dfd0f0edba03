/*
 * Copyright (c) 2023 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ihc

import (
	"context"
	"sync"
)

// Executor runs blocking controller calls one at a time on a single worker goroutine.
type Executor struct {
	jobs chan job
	done chan struct{}
}

type job struct {
	fn       func()
	finished chan struct{}
}

// NewExecutor starts the worker; it stops when ctx is done.
func NewExecutor(ctx context.Context, wg *sync.WaitGroup) *Executor {
	this := &Executor{
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(this.done)
		for {
			select {
			case <-ctx.Done():
				return
			case j := <-this.jobs:
				j.fn()
				close(j.finished)
			}
		}
	}()
	return this
}

// Do blocks until fn has run or ctx is done.
// A job that was already handed to the worker still runs if ctx is done afterwards.
func (this *Executor) Do(ctx context.Context, fn func()) error {
	j := job{fn: fn, finished: make(chan struct{})}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-this.done:
		return context.Canceled
	case this.jobs <- j:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-j.finished:
		return nil
	}
}

// Call runs fn through the executor and returns its results.
func Call[T any](ctx context.Context, executor *Executor, fn func() (T, error)) (result T, err error) {
	var temp T
	var fnErr error
	err = executor.Do(ctx, func() {
		temp, fnErr = fn()
	})
	if err != nil {
		return result, err
	}
	return temp, fnErr
}
