package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindChat, KindOf("gemini-2.0-flash-001"))
	assert.Equal(t, KindCompletion, KindOf("gemini-1.0-pro"))
	assert.Equal(t, KindCompletion, KindOf("some-unknown-model"), "unknown models fall back to completion-style")
}

func TestDefaultModelIsRegistered(t *testing.T) {
	assert.Contains(t, ModelIDs(), DefaultModel)
	assert.Equal(t, KindChat, KindOf(DefaultModel))
}

func TestModelsIsACopy(t *testing.T) {
	models := Models()
	models[0].ID = "mutated"
	assert.NotEqual(t, "mutated", Models()[0].ID)
}
