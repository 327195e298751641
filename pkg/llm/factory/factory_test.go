package factory

import (
	"testing"

	"turingtest-be/internal/pkg/logger"
	"turingtest-be/pkg/llm/simulated"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReplyGenerator(t *testing.T) {
	gen, err := NewReplyGenerator(Options{Provider: "simulated"}, logger.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &simulated.Provider{}, gen)

	_, err = NewReplyGenerator(Options{Provider: "ollama"}, logger.NewNopLogger())
	assert.EqualError(t, err, "unsupported LLM provider: ollama")
}
