package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/fakesss/engine/core"
)

// JobTask is a unit of background work. OnStart runs on a worker; OnComplete
// or OnFailure runs on the thread that calls Update.
type JobTask struct {
	Name       string
	OnStart    func() (interface{}, error)
	OnComplete func(result interface{})
	OnFailure  func(err error)
}

type jobResult struct {
	task   JobTask
	result interface{}
	err    error
}

type JobSystem struct {
	numWorkers int
	jobQueue   chan JobTask
	results    chan jobResult
	wg         sync.WaitGroup
	pending    sync.WaitGroup
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan JobTask, channelSize),
		results:    make(chan jobResult, channelSize+numWorkers),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go func() {
			defer js.wg.Done()
			for job := range js.jobQueue {
				res, err := job.OnStart()
				if err != nil {
					core.LogError("job %s failed: %s", job.Name, err)
				}
				js.results <- jobResult{task: job, result: res, err: err}
			}
		}()
	}
}

/**
 * @brief Shuts the job system down. Results not yet collected by Update are dropped.
 */
func (js *JobSystem) Shutdown() error {
	close(js.jobQueue)
	go func() {
		for range js.results {
			js.pending.Done()
		}
	}()
	js.wg.Wait()
	js.pending.Wait()
	close(js.results)
	return nil
}

/**
 * @brief Runs the callbacks of finished jobs on the calling thread. Should happen once an update cycle.
 * @returns the number of jobs collected.
 */
func (js *JobSystem) Update() int {
	n := 0
	for {
		select {
		case r := <-js.results:
			js.dispatch(r)
			n++
		default:
			return n
		}
	}
}

// Wait blocks until every submitted job has finished and its callbacks ran on
// the calling thread.
func (js *JobSystem) Wait() {
	done := make(chan struct{})
	go func() {
		js.pending.Wait()
		close(done)
	}()
	for {
		select {
		case r := <-js.results:
			js.dispatch(r)
		case <-done:
			// callbacks for results received before done were already dispatched
			return
		}
	}
}

func (js *JobSystem) dispatch(r jobResult) {
	defer js.pending.Done()
	if r.err != nil {
		if r.task.OnFailure != nil {
			r.task.OnFailure(r.err)
		}
		return
	}
	if r.task.OnComplete != nil {
		r.task.OnComplete(r.result)
	}
}

/**
 * @brief Submits the provided job to be queued for execution.
 */
func (js *JobSystem) Submit(jt JobTask) {
	js.pending.Add(1)
	js.jobQueue <- jt
}
