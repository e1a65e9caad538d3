package cleanup

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"figaros/internal/turnos"
)

// Daily at 03:00: the sweep only has to win against the 7-day row TTL, so
// once a day is plenty.
const schedule = "0 3 * * *"

// Start launches the expiry sweep cron. Failures are logged and the next
// run proceeds as scheduled; the sweep is never fatal to the process.
func Start(store turnos.Store) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := store.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			log.WithError(err).Error("cleanup: expiry sweep failed")
			return
		}
		if n > 0 {
			log.Infof("cleanup: turnos eliminados: %d", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
