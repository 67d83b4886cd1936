package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbus-hab/nimbus/pkg/domain"
)

func TestParsePhase(t *testing.T) {
	t.Run("round trips every known phase", func(t *testing.T) {
		for _, p := range domain.Phases {
			parsed, err := domain.ParsePhase(string(p))
			require.NoError(t, err)
			assert.Equal(t, p, parsed)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		for _, s := range []string{"", "LAUNCHING", "initializing", "GOING_UP "} {
			_, err := domain.ParsePhase(s)
			assert.ErrorIs(t, err, domain.ErrUnknownPhase, "input %q", s)
		}
	})
}

func TestPhaseTerminal(t *testing.T) {
	for _, p := range domain.Phases {
		assert.Equal(t, p == domain.PhaseShutDown, p.Terminal(), "phase %s", p)
	}
}
