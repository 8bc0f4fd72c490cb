package reconcile

import (
	"context"
	"fmt"
	"slices"
	"time"

	"ecessbot/clients"
	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/metrics"
	"ecessbot/models"
	"ecessbot/services"
)

// Domain names used in logs and metrics
const (
	DomainPins    = "pins"
	DomainCourses = "courses"
)

// Reconciler keeps the threads of one document un-archived and drops the ones that no longer exist
type Reconciler struct {
	domain              string
	discordClient       clients.DiscordClient
	source              services.ThreadSource
	autoArchiveDuration int
}

func NewReconciler(
	domain string,
	discordClient clients.DiscordClient,
	source services.ThreadSource,
	autoArchiveDuration int,
) *Reconciler {
	return &Reconciler{
		domain:              domain,
		discordClient:       discordClient,
		source:              source,
		autoArchiveDuration: autoArchiveDuration,
	}
}

func (r *Reconciler) Domain() string {
	return r.domain
}

// Tick runs one pass over every tracked thread. A failing thread is logged and skipped;
// only a failure to read the document itself is returned.
func (r *Reconciler) Tick(ctx context.Context) error {
	if !r.discordClient.IsReady() {
		log.Debug("⏭️ Skipping reconciliation, gateway not ready", "domain", r.domain)
		return nil
	}
	defer metrics.ObserveTick(r.domain, time.Now())

	threadIDs, err := r.source.TrackedThreads(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tracked %s threads: %w", r.domain, err)
	}

	for _, threadID := range threadIDs {
		if ctx.Err() != nil {
			return nil
		}
		if err := r.reconcile(ctx, threadID); err != nil {
			metrics.ReconcileErrors.WithLabelValues(r.domain).Inc()
			log.Error("❌ Failed to reconcile thread", "domain", r.domain, "thread_id", threadID, "error", err)
		}
	}
	return nil
}

// Tracks reports whether threadID is in this reconciler's document
func (r *Reconciler) Tracks(ctx context.Context, threadID string) (bool, error) {
	threadIDs, err := r.source.TrackedThreads(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list tracked %s threads: %w", r.domain, err)
	}
	return slices.Contains(threadIDs, threadID), nil
}

// ReconcileThread repairs a single thread right away, e.g. after the gateway reported it archived
func (r *Reconciler) ReconcileThread(ctx context.Context, threadID string) error {
	if err := r.reconcile(ctx, threadID); err != nil {
		metrics.ReconcileErrors.WithLabelValues(r.domain).Inc()
		return fmt.Errorf("failed to reconcile %s thread %s: %w", r.domain, threadID, err)
	}
	return nil
}

func (r *Reconciler) reconcile(ctx context.Context, threadID string) error {
	thread, err := r.lookupThread(ctx, threadID)
	if err != nil {
		if core.IsNotFoundError(err) {
			return r.prune(ctx, threadID)
		}
		return err
	}

	if !thread.Archived {
		return nil
	}

	repaired, err := r.source.RepairIfTracked(ctx, threadID, func(ctx context.Context) error {
		log.Info("🔄 Un-archiving thread", "domain", r.domain, "thread_id", threadID, "name", thread.Name)
		archived := false
		return r.discordClient.EditThread(ctx, threadID, models.ThreadEdit{
			Archived:            &archived,
			AutoArchiveDuration: r.autoArchiveDuration,
		})
	})
	if err != nil {
		// prune outside the repair, the source lock is not reentrant
		if core.IsNotFoundError(err) {
			return r.prune(ctx, threadID)
		}
		return fmt.Errorf("failed to un-archive thread: %w", err)
	}
	if !repaired {
		log.Debug("⏭️ Thread stopped being tracked, leaving it archived", "domain", r.domain, "thread_id", threadID)
		return nil
	}
	metrics.ThreadRepairs.WithLabelValues(r.domain).Inc()
	return nil
}

func (r *Reconciler) lookupThread(ctx context.Context, threadID string) (*models.Thread, error) {
	maybeThread := r.discordClient.GetCachedThread(threadID)
	if maybeThread.IsPresent() {
		return maybeThread.MustGet(), nil
	}
	return r.discordClient.FetchThread(ctx, threadID)
}

func (r *Reconciler) prune(ctx context.Context, threadID string) error {
	log.Warn("⚠️ Tracked thread no longer exists, removing it", "domain", r.domain, "thread_id", threadID)
	pruned, err := r.source.PruneThread(ctx, threadID)
	if err != nil {
		return err
	}
	if pruned {
		metrics.ThreadPrunes.WithLabelValues(r.domain).Inc()
	}
	return nil
}

// Run ticks every interval until ctx is cancelled. wrap lets the caller install a fault boundary around
// each tick; a nil wrap runs ticks as-is.
func (r *Reconciler) Run(
	ctx context.Context,
	interval time.Duration,
	wrap func(taskName string, task func(ctx context.Context) error) func(ctx context.Context) error,
) {
	tick := r.Tick
	if wrap != nil {
		tick = wrap("reconcile "+r.domain, r.Tick)
	}

	log.Info("🚀 Starting reconciliation loop", "domain", r.domain, "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("🛑 Reconciliation loop stopped", "domain", r.domain)
			return
		case <-ticker.C:
			if err := tick(ctx); err != nil {
				log.Error("❌ Reconciliation tick failed", "domain", r.domain, "error", err)
			}
		}
	}
}
