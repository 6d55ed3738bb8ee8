package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelErrorWrapping(t *testing.T) {
	err := NewModelError(ErrCodeTrainingInProgress, "interaction-classifier",
		"a training run is already in flight", ErrTrainingInProgress)

	assert.True(t, errors.Is(err, ErrTrainingInProgress))
	assert.False(t, errors.Is(err, ErrTrainingTimeout))
	assert.Contains(t, err.Error(), "interaction-classifier")
	assert.Contains(t, err.Error(), ErrCodeTrainingInProgress)
	assert.False(t, err.Timestamp.IsZero())
}

func TestModelErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("training wait: %w",
		NewModelError(ErrCodeTrainingTimeout, "neural-risk-model", "deadline expired", ErrTrainingTimeout))

	var modelErr *ModelError
	require.True(t, errors.As(wrapped, &modelErr))
	assert.Equal(t, ErrCodeTrainingTimeout, modelErr.Code)
	assert.Equal(t, "neural-risk-model", modelErr.Model)
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{ErrTrainingInProgress, ErrTrainingTimeout, ErrTrainingFailed, ErrDatasetUnavailable}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
		}
	}
}
