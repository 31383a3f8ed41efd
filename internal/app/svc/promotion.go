package svc

import (
	"bytes"
	"context"
	"fmt"
	"github.com/beldeveloper/gitflow-promoter/internal/app"
	"github.com/beldeveloper/gitflow-promoter/internal/app/errtype"
	"github.com/beldeveloper/gitflow-promoter/pkg"
	"github.com/beldeveloper/go-errors-context"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"path/filepath"
	"time"
)

// NewPromotion creates a new instance of the promotions service.
func NewPromotion(
	gateSvc app.GateSvc,
	checkoutSvc app.CheckoutSvc,
	macroSvc app.MacroSvc,
	hookSvc pkg.HookSvc,
	publisher app.EventPublisher,
	archive app.TranscriptArchive,
	jobRepo app.JobRepo,
	buildRepo app.BuildRepo,
	promoRepo app.PromotionRepo,
	workspacesDir app.WorkspacesDir,
) app.PromotionSvc {
	return Promotion{
		gateSvc:       gateSvc,
		checkoutSvc:   checkoutSvc,
		macroSvc:      macroSvc,
		hookSvc:       hookSvc,
		publisher:     publisher,
		archive:       archive,
		jobRepo:       jobRepo,
		buildRepo:     buildRepo,
		promoRepo:     promoRepo,
		workspacesDir: string(workspacesDir),
		now:           time.Now,
	}
}

// Promotion is a service that turns the completed builds into promotions and runs them.
type Promotion struct {
	gateSvc       app.GateSvc
	checkoutSvc   app.CheckoutSvc
	macroSvc      app.MacroSvc
	hookSvc       pkg.HookSvc
	publisher     app.EventPublisher
	archive       app.TranscriptArchive
	jobRepo       app.JobRepo
	buildRepo     app.BuildRepo
	promoRepo     app.PromotionRepo
	workspacesDir string
	now           func() time.Time
}

// BuildCompleted stores the build and enqueues a promotion for every process whose gate it passes.
// A build is promoted by the same process at most once, so the redelivered events are harmless.
func (s Promotion) BuildCompleted(ctx context.Context, b app.Build) ([]app.Promotion, error) {
	b, err := s.normalize(b)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "svc.Promotion.BuildCompleted.normalize"})
	}
	err = s.buildRepo.Save(ctx, b)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{
			Path:   "svc.Promotion.BuildCompleted.Save",
			Params: errors.Params{"build": b.ID},
		})
	}
	job, err := s.jobRepo.FindByName(ctx, b.Job)
	if err != nil {
		if errors.Is(err, errtype.ErrNotFound) {
			log.Info().Str("job", b.Job).Str("build", b.ID).Msg("The job has no promotion processes, the build is ignored")
			return nil, nil
		}
		return nil, errors.WrapContext(err, errors.Context{
			Path:   "svc.Promotion.BuildCompleted.FindByName",
			Params: errors.Params{"job": b.Job},
		})
	}
	var res []app.Promotion
	for _, proc := range job.Processes {
		d := s.gateSvc.Evaluate(b.Outcome, proc.Patterns.IncludeUnstable, b.Branch, proc.Patterns.Patterns)
		if !d.Matched {
			continue
		}
		now := s.now()
		p, created, err := s.promoRepo.Add(ctx, app.Promotion{
			Process:        proc.Name,
			Job:            job.Name,
			BuildID:        b.ID,
			Branch:         *d.SourceBranch,
			MatchedPattern: *d.MatchedPattern,
			Commit:         b.Commit,
			Status:         app.PromotionStatusEnqueued,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		if err != nil {
			return res, errors.WrapContext(err, errors.Context{
				Path:   "svc.Promotion.BuildCompleted.Add",
				Params: errors.Params{"build": b.ID, "process": proc.Name},
			})
		}
		if !created {
			log.Info().Str("build", b.ID).Str("process", proc.Name).Msg("The build is already promoted, skipped")
			continue
		}
		log.Info().Str("build", b.ID).Str("process", proc.Name).Str("pattern", p.MatchedPattern).
			Msgf("The promotion #%d is enqueued", p.ID)
		s.publish(ctx, app.PromotionEventMatched, p)
		res = append(res, p)
	}
	return res, nil
}

// Evaluate runs the gate of every process of the build's job without recording anything.
func (s Promotion) Evaluate(ctx context.Context, b app.Build) ([]app.Evaluation, error) {
	b, err := s.normalize(b)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "svc.Promotion.Evaluate.normalize"})
	}
	job, err := s.jobRepo.FindByName(ctx, b.Job)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{
			Path:   "svc.Promotion.Evaluate.FindByName",
			Params: errors.Params{"job": b.Job},
		})
	}
	res := make([]app.Evaluation, len(job.Processes))
	for i, proc := range job.Processes {
		res[i] = app.Evaluation{
			Process:  proc.Name,
			Decision: s.gateSvc.Evaluate(b.Outcome, proc.Patterns.IncludeUnstable, b.Branch, proc.Patterns.Patterns),
		}
	}
	return res, nil
}

// List returns all promotions.
func (s Promotion) List(ctx context.Context) ([]app.Promotion, error) {
	res, err := s.promoRepo.FindAll(ctx)
	return res, errors.WrapContext(err, errors.Context{Path: "svc.Promotion.List.FindAll"})
}

// Get returns the promotion by ID.
func (s Promotion) Get(ctx context.Context, id uint64) (app.Promotion, error) {
	res, err := s.promoRepo.FindByID(ctx, id)
	return res, errors.WrapContext(err, errors.Context{
		Path:   "svc.Promotion.Get.FindByID",
		Params: errors.Params{"promotion": id},
	})
}

// Retry enqueues the failed promotion once again.
func (s Promotion) Retry(ctx context.Context, id uint64) (app.Promotion, error) {
	p, err := s.promoRepo.FindByID(ctx, id)
	if err != nil {
		return p, errors.WrapContext(err, errors.Context{
			Path:   "svc.Promotion.Retry.FindByID",
			Params: errors.Params{"promotion": id},
		})
	}
	if p.Status != app.PromotionStatusFailed {
		return p, errors.WrapContext(
			fmt.Errorf("%w: only failed promotions can be retried; status=%s", errtype.ErrBadInput, p.Status),
			errors.Context{Path: "svc.Promotion.Retry.status", Params: errors.Params{"promotion": id}},
		)
	}
	p.Status = app.PromotionStatusEnqueued
	p.ErrorMsg = nil
	p.Console = ""
	p.Workspace = ""
	p.UpdatedAt = s.now()
	p, err = s.promoRepo.Update(ctx, p)
	if err != nil {
		return p, errors.WrapContext(err, errors.Context{
			Path:   "svc.Promotion.Retry.Update",
			Params: errors.Params{"promotion": id},
		})
	}
	log.Info().Msgf("The promotion #%d is enqueued for retrying", p.ID)
	return p, nil
}

// Recover fails the promotions left running by a stopped worker; the hook may have been called for them already,
// so they are re-triggered only by an explicit retry.
func (s Promotion) Recover(ctx context.Context) error {
	n, err := s.promoRepo.FailRunning(ctx, "The promotion was interrupted", s.now())
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "svc.Promotion.Recover.FailRunning"})
	}
	if n > 0 {
		log.Warn().Int64("count", n).Msg("The interrupted promotions are marked as failed")
	}
	return nil
}

// PromoteJob claims one enqueued promotion, checks the branch out if the process requires it and calls the hook.
func (s Promotion) PromoteJob(ctx context.Context) error {
	p, err := s.promoRepo.Claim(ctx, s.now())
	if err != nil {
		if !errors.Is(err, errtype.ErrNotFound) {
			return errors.WrapContext(err, errors.Context{Path: "svc.Promotion.PromoteJob.Claim"})
		}
		return nil
	}
	b, err := s.buildRepo.FindByID(ctx, p.BuildID)
	if err != nil {
		return s.finish(ctx, p, nil, fmt.Sprintf("Can't find build id=%s; err=%v", p.BuildID, err))
	}
	job, err := s.jobRepo.FindByName(ctx, p.Job)
	if err != nil {
		return s.finish(ctx, p, nil, fmt.Sprintf("Can't find job %s; err=%v", p.Job, err))
	}
	proc, ok := job.Process(p.Process)
	if !ok {
		return s.finish(ctx, p, nil, fmt.Sprintf("The job %s has no promotion process %s", p.Job, p.Process))
	}
	var console bytes.Buffer
	if proc.Checkout {
		p.Workspace = filepath.Join(s.workspacesDir, p.Process+"-"+uuid.NewString())
		scm := b.SCM
		if scm == "" {
			scm = job.SCM
		}
		req := app.CheckoutRequest{
			Branch:        p.Branch,
			RepositoryURL: b.RepositoryURL,
			SCM:           scm,
			Workspace:     app.Workspace{Node: job.Node, Path: p.Workspace},
		}
		if proc.PinCommit {
			req.Commit = p.Commit
		}
		err = s.checkoutSvc.Run(ctx, req, &console)
		if err != nil {
			if ferr := s.finish(ctx, p, &console, fmt.Sprintf("Can't check out branch %s; err=%v", p.Branch, err)); ferr != nil {
				return ferr
			}
			return errors.WrapContext(err, errors.Context{
				Path:   "svc.Promotion.PromoteJob.Run",
				Params: errors.Params{"promotion": p.ID},
			})
		}
	}
	hookRes, err := s.hookSvc.Promote(ctx, pkg.HookPromoteReq{
		PromotionID:    p.ID,
		Process:        p.Process,
		Job:            p.Job,
		BuildID:        p.BuildID,
		Branch:         p.Branch,
		MatchedPattern: p.MatchedPattern,
		Commit:         p.Commit,
		Workspace:      p.Workspace,
		Label:          s.macroSvc.Expand(ctx, b.ID, proc.Label),
	})
	if err != nil {
		if ferr := s.finish(ctx, p, &console, err.Error()); ferr != nil {
			return ferr
		}
		return errors.WrapContext(err, errors.Context{
			Path:   "svc.Promotion.PromoteJob.Promote",
			Params: errors.Params{"promotion": p.ID},
		})
	}
	if hookRes.Status != app.PromotionStatusReady {
		msg := fmt.Sprintf("The hook handler reported status %s", hookRes.Status)
		if hookRes.ErrorMsg != nil {
			msg = *hookRes.ErrorMsg
		}
		log.Warn().Str("status", hookRes.Status).Msgf("The promotion #%d was not completed, see details in hook handler", p.ID)
		return s.finish(ctx, p, &console, msg)
	}
	err = s.finish(ctx, p, &console, "")
	if err != nil {
		return err
	}
	log.Info().Msgf("The promotion #%d is ready", p.ID)
	return nil
}

// finish records the final status; an empty error message means success.
// The promotion stays running if it can't be saved, so it is never claimed again.
func (s Promotion) finish(ctx context.Context, p app.Promotion, console *bytes.Buffer, errorMsg string) error {
	ev := app.PromotionEventReady
	p.Status = app.PromotionStatusReady
	p.ErrorMsg = nil
	if errorMsg != "" {
		ev = app.PromotionEventFailed
		p.Status = app.PromotionStatusFailed
		p.ErrorMsg = &errorMsg
		log.Error().Str("build", p.BuildID).Str("process", p.Process).Msgf("The promotion #%d failed: %s", p.ID, errorMsg)
	}
	if console != nil {
		p.Console = console.String()
	}
	if p.Console != "" {
		if key, err := s.archive.Archive(ctx, p); err != nil {
			log.Error().Err(errors.WrapContext(err, errors.Context{
				Path:   "svc.Promotion.finish.Archive",
				Params: errors.Params{"promotion": p.ID},
			})).Send()
		} else if key != "" {
			log.Debug().Str("key", key).Msgf("The console of the promotion #%d is archived", p.ID)
		}
	}
	p.UpdatedAt = s.now()
	updated, err := s.promoRepo.Update(ctx, p)
	if err != nil {
		return errors.WrapContext(err, errors.Context{
			Path:   "svc.Promotion.finish.Update",
			Params: errors.Params{"promotion": p.ID, "status": p.Status},
		})
	}
	s.publish(ctx, ev, updated)
	return nil
}

func (s Promotion) publish(ctx context.Context, typ string, p app.Promotion) {
	err := s.publisher.Publish(ctx, app.PromotionEvent{Type: typ, Promotion: p, Time: s.now()})
	if err != nil {
		log.Error().Err(errors.WrapContext(err, errors.Context{
			Path:   "svc.Promotion.publish",
			Params: errors.Params{"promotion": p.ID, "event": typ},
		})).Send()
	}
}

func (s Promotion) normalize(b app.Build) (app.Build, error) {
	if b.Job == "" {
		return b, fmt.Errorf("%w: the build has no job", errtype.ErrBadInput)
	}
	if b.ID == "" {
		b.ID = fmt.Sprintf("%s#%d", b.Job, b.Number)
	}
	b.Outcome = app.ParseOutcome(string(b.Outcome))
	if b.CompletedAt.IsZero() {
		b.CompletedAt = s.now()
	}
	return b, nil
}
