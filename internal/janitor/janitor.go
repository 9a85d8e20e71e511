// Package janitor runs scheduled cache maintenance. Expiry is still checked
// lazily on every cache operation; the sweep only reclaims memory for records
// nobody asks for again.
package janitor

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"MarketLens/internal/service"
)

// Janitor periodically purges expired cache records.
type Janitor struct {
	Cron    *cron.Cron
	Service *service.Service
}

// New creates a Janitor around the shared service.
func New(svc *service.Service) *Janitor {
	return &Janitor{
		Cron:    cron.New(cron.WithSeconds()),
		Service: svc,
	}
}

// Register adds the purge task under the given cron spec (seconds field
// included, e.g. "0 */15 * * * *" for every 15 minutes).
func (j *Janitor) Register(spec string) error {
	if _, err := j.Cron.AddFunc(spec, j.purge); err != nil {
		return fmt.Errorf("register purge task: %w", err)
	}
	return nil
}

func (j *Janitor) purge() {
	msg := j.Service.RemoveExpired()
	log.Printf("[INFO] janitor: %s", msg)
}

// Start starts the cron scheduler.
func (j *Janitor) Start() {
	j.Cron.Start()
	log.Println("[INFO] janitor started")
}

// Stop stops the cron scheduler gracefully.
func (j *Janitor) Stop() {
	j.Cron.Stop()
	log.Println("[INFO] janitor stopped")
}
