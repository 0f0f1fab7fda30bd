package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RegistersJobsWithExpressions(t *testing.T) {
	driver := &fakeDriver{}
	var ran []string
	s := NewScheduler(driver, nil,
		Job{Name: "scrape", Spec: "0 6 * * *", Run: func(context.Context, time.Time) error {
			ran = append(ran, "scrape")
			return nil
		}},
		Job{Name: "tick", Spec: "*/15 * * * *", Run: func(context.Context, time.Time) error {
			ran = append(ran, "tick")
			return errors.New("lock busy")
		}},
		Job{Name: "disabled", Run: func(context.Context, time.Time) error { return nil }},
	)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, driver.started)
	assert.Equal(t, []string{"0 6 * * *", "*/15 * * * *"}, driver.specs)

	for _, job := range driver.jobs {
		job(runDay)
	}
	assert.Equal(t, []string{"scrape", "tick"}, ran)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestScheduler_AddFailureAndNilDriver(t *testing.T) {
	driver := &fakeDriver{addErr: errors.New("bad spec")}
	s := NewScheduler(driver, nil, Job{Name: "tick", Spec: "nope", Run: func(context.Context, time.Time) error { return nil }})
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, driver.started)

	idle := NewScheduler(nil, nil)
	assert.NoError(t, idle.Start(context.Background()))
	assert.NoError(t, idle.Stop(context.Background()))
}
