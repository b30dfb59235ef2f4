package systems

import (
	"errors"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/fakesss/engine/core"
)

func init() {
	core.SetLogOutput(io.Discard)
}

func TestNewJobSystemValidates(t *testing.T) {
	_, err := NewJobSystem(0, 4)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemCallbacksRunOnWaiter(t *testing.T) {
	js, err := NewJobSystem(3, 8)
	require.NoError(t, err)
	defer js.Shutdown()

	var started atomic.Int32
	var completed, failed []string
	for _, name := range []string{"albedo", "normal", "specular"} {
		name := name
		js.Submit(JobTask{
			Name: name,
			OnStart: func() (interface{}, error) {
				started.Add(1)
				if name == "normal" {
					return nil, errors.New("decode failed")
				}
				return name + ".png", nil
			},
			OnComplete: func(result interface{}) {
				completed = append(completed, result.(string))
			},
			OnFailure: func(err error) {
				failed = append(failed, name+": "+err.Error())
			},
		})
	}

	js.Wait()
	assert.Equal(t, int32(3), started.Load())
	assert.ElementsMatch(t, []string{"albedo.png", "specular.png"}, completed)
	assert.Equal(t, []string{"normal: decode failed"}, failed)
	assert.Zero(t, js.Update())
}

func TestJobSystemUpdateCollects(t *testing.T) {
	js, err := NewJobSystem(1, 4)
	require.NoError(t, err)

	release := make(chan struct{})
	done := false
	js.Submit(JobTask{
		Name: "blocked",
		OnStart: func() (interface{}, error) {
			<-release
			return nil, nil
		},
		OnComplete: func(interface{}) { done = true },
	})

	assert.Zero(t, js.Update())
	assert.False(t, done)
	close(release)
	js.Wait()
	assert.True(t, done)
	require.NoError(t, js.Shutdown())
}

func TestJobSystemShutdownDropsResults(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)

	called := false
	js.Submit(JobTask{
		Name:       "dropped",
		OnStart:    func() (interface{}, error) { return 1, nil },
		OnComplete: func(interface{}) { called = true },
	})
	require.NoError(t, js.Shutdown())
	assert.False(t, called)
}
