package config_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/cli/config"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/service/worker"
)

func TestRefreshScheduleTargets(t *testing.T) {
	t.Run("parses vendor targets", func(t *testing.T) {
		sched := config.NewRefreshScheduleForTest([]string{"cork:abc-123", "itglue:42"}, time.Hour)

		targets, err := sched.Targets()
		gt.NoError(t, err).Required()
		gt.Value(t, targets).Equal([]worker.Target{
			{Vendor: types.VendorCork, ClientUUID: "abc-123"},
			{Vendor: types.VendorITGlue, ClientUUID: "42"},
		})
		gt.Value(t, sched.Interval()).Equal(time.Hour)
	})

	t.Run("no targets", func(t *testing.T) {
		targets, err := config.NewRefreshScheduleForTest(nil, time.Hour).Targets()
		gt.NoError(t, err)
		gt.Array(t, targets).Length(0)
	})

	t.Run("rejects malformed target", func(t *testing.T) {
		_, err := config.NewRefreshScheduleForTest([]string{"cork"}, time.Hour).Targets()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("rejects unknown vendor", func(t *testing.T) {
		_, err := config.NewRefreshScheduleForTest([]string{"notion:1"}, time.Hour).Targets()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
