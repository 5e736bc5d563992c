package bot

import (
	"testing"

	"github.com/robalyx/repledger/internal/bot/constants"
	"github.com/robalyx/repledger/internal/database/types/enum"
	"github.com/stretchr/testify/assert"
)

func TestCommandActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		want    enum.ActionKind
	}{
		{constants.RepCommandName, enum.ActionKindRep},
		{constants.NoRepCommandName, enum.ActionKindNegRep},
		{constants.SetRepCommandName, enum.ActionKindSetRep},
		{constants.RateCommandName, enum.ActionKindFeedback},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()

			action, ok := commandActions[tt.command]
			assert.True(t, ok)
			assert.Equal(t, tt.want, action)
			assert.True(t, action.IsAActionKind())
		})
	}

	assert.Len(t, commandActions, len(tests))
	assert.NotContains(t, commandActions, constants.CheckRepCommandName)
}
