package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

func TestBaseEstimator(t *testing.T) {
	var e BaseEstimator
	assert.False(t, e.IsFitted())

	err := e.CheckFitted("Op")
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))

	e.SetFitted()
	assert.True(t, e.IsFitted())
	assert.NoError(t, e.CheckFitted("Op"))

	e.Reset()
	assert.False(t, e.IsFitted())
}
