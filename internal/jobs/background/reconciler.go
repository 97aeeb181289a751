package background

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"foamworks/internal/models"
	"foamworks/internal/repositories"
)

// Reconciler periodically audits completed jobs whose inventory side effects
// never landed. It only reports; the completion path itself is the sole
// writer of stock adjustments, so the sweep never mutates anything.
type Reconciler struct {
	scheduler     gocron.Scheduler
	estimatesRepo repositories.EstimatesRepository
}

func NewReconciler(estimatesRepo repositories.EstimatesRepository) (*Reconciler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	r := &Reconciler{
		scheduler:     scheduler,
		estimatesRepo: estimatesRepo,
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(r.auditCompletedJobs, context.Background()),
		gocron.WithName("completed-jobs-audit"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Reconciler) Start() {
	log.Printf("Starting reconciliation scheduler")
	r.scheduler.Start()
}

func (r *Reconciler) Stop() error {
	log.Printf("Stopping reconciliation scheduler")
	return r.scheduler.Shutdown()
}

// auditCompletedJobs flags completed estimates whose stored document never
// got the inventoryProcessed mark. These indicate a completion that was
// interrupted before its stock effects committed.
func (r *Reconciler) auditCompletedJobs(ctx context.Context) {
	estimates, err := r.estimatesRepo.ListByStatusAllTenants(ctx, models.StatusCompleted)
	if err != nil {
		log.Printf("WARN: completed jobs audit failed: %v", err)
		return
	}

	flagged := 0
	for _, est := range estimates {
		doc, err := models.ParseDocument(est.Raw)
		if err != nil {
			continue
		}
		if !doc.Bool("inventoryProcessed") {
			flagged++
			log.Printf("WARN: completed job %s (%s) has unprocessed inventory", est.ID, est.TenantID)
		}
	}
	if flagged > 0 {
		log.Printf("completed jobs audit: %d job(s) flagged across %d completed", flagged, len(estimates))
	}
}
