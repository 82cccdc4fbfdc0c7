package background

import (
	"context"
	"log"
	"time"

	"slotshare/internal/ratelimit"
	"slotshare/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the time-based reservation transitions and housekeeping.
// The request paths never perform these transitions themselves.
type JobScheduler struct {
	scheduler       gocron.Scheduler
	reservationRepo repositories.ReservationRepository
	limiterStore    *ratelimit.MemoryStore
}

// NewJobScheduler creates the scheduler. limiterStore may be nil when the
// Redis attempt store is in use (Redis expires its own keys).
func NewJobScheduler(reservationRepo repositories.ReservationRepository, limiterStore *ratelimit.MemoryStore) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:       scheduler,
		reservationRepo: reservationRepo,
		limiterStore:    limiterStore,
	}
	js.registerJobs()
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	if _, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(js.sweepReservations, context.Background()),
		gocron.WithName("reservation-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		log.Printf("Failed to create reservation sweep job: %v", err)
	}

	if js.limiterStore != nil {
		if _, err := js.scheduler.NewJob(
			gocron.DurationJob(15*time.Minute),
			gocron.NewTask(js.sweepRateLimiter),
			gocron.WithName("ratelimit-sweep"),
		); err != nil {
			log.Printf("Failed to create rate limiter sweep job: %v", err)
		}
	}
}

// sweepReservations applies the time-based transitions: confirmed past
// end_time become completed, pending past end_time become no_show.
func (js *JobScheduler) sweepReservations(ctx context.Context) {
	now := time.Now()

	completed, err := js.reservationRepo.CompleteElapsed(ctx, now)
	if err != nil {
		log.Printf("reservation sweep: complete elapsed failed: %v", err)
	} else if completed > 0 {
		log.Printf("reservation sweep: completed %d reservations", completed)
	}

	noShows, err := js.reservationRepo.MarkNoShows(ctx, now)
	if err != nil {
		log.Printf("reservation sweep: mark no-shows failed: %v", err)
	} else if noShows > 0 {
		log.Printf("reservation sweep: marked %d no-shows", noShows)
	}
}

func (js *JobScheduler) sweepRateLimiter() {
	if removed := js.limiterStore.Sweep(); removed > 0 {
		log.Printf("rate limiter sweep: dropped %d expired windows", removed)
	}
}
