package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dcreceiving/internal/domain/audit"
	"dcreceiving/internal/domain/inventory"
	"dcreceiving/internal/domain/live"
	"dcreceiving/internal/domain/progress"
	"dcreceiving/internal/domain/upload"
	"dcreceiving/internal/domain/verification"
)

// Outcome is the result of a successful verify or unverify.
type Outcome struct {
	Item     *inventory.EquipmentItem `json:"item"`
	Evidence *upload.Upload           `json:"evidence,omitempty"`
	Progress progress.Progress        `json:"progress"`
	Complete bool                     `json:"complete"`
	// ProgressStale is set when the verification went through but progress
	// could not be recomputed; Progress and Complete are then unset.
	ProgressStale bool   `json:"progress_stale,omitempty"`
	Notice        Notice `json:"notice"`
}

type Deps struct {
	Engine     *verification.Engine
	Aggregator *progress.Aggregator
	Store      inventory.Reader
	Evidence   EvidenceStore
	Audit      AuditRecorder
	Publisher  Publisher
	Notifier   Notifier
	Log        *zap.Logger
}

// Controller turns one scan (plus an optional photo) into a single verify
// call. Evidence and verification persist together or not at all.
type Controller struct {
	engine     *verification.Engine
	aggregator *progress.Aggregator
	store      inventory.Reader
	evidence   EvidenceStore
	audit      AuditRecorder
	publisher  Publisher
	notifier   Notifier
	log        *zap.Logger
	now        func() time.Time
}

func NewController(d Deps) *Controller {
	c := &Controller{
		engine:     d.Engine,
		aggregator: d.Aggregator,
		store:      d.Store,
		evidence:   d.Evidence,
		audit:      d.Audit,
		publisher:  d.Publisher,
		notifier:   d.Notifier,
		log:        d.Log,
		now:        time.Now,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.notifier == nil {
		c.notifier = NewLogNotifier(c.log)
	}
	return c
}

// Attempt verifies serial on the delivery note. A photo, if given, is stored
// first, concurrently with the delivery note lookup; both finish before the
// verification is attempted.
func (c *Controller) Attempt(ctx context.Context, operatorID, deliveryNoteID int64, serial string, photo *upload.Photo) (*Outcome, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, c.fail(verification.ErrEmptySerial)
	}

	if photo != nil && c.evidence == nil {
		return nil, c.fail(fmt.Errorf("%w: no evidence store configured", ErrEvidenceUploadFailed))
	}

	var evidence *upload.Upload
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.engine.RequireDeliveryNote(gctx, deliveryNoteID)
	})
	if photo != nil {
		g.Go(func() error {
			u, err := c.evidence.Save(gctx, operatorID, photo)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrEvidenceUploadFailed, err)
			}
			evidence = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.discard(ctx, evidence)
		return nil, c.fail(err)
	}

	ref := ""
	if evidence != nil {
		ref = evidence.FileURL
	}
	item, err := c.engine.Verify(ctx, serial, deliveryNoteID, ref)
	if err != nil {
		c.discard(ctx, evidence)
		return nil, c.fail(err)
	}

	before := *item
	before.IsVerified = false
	before.VerificationPhotoPath = nil
	before.VerifiedAt = nil
	c.record(ctx, operatorID, audit.ActionVerify, &before, item)

	out := &Outcome{Item: item, Evidence: evidence, Notice: SuccessNotice(item, evidence != nil)}
	c.finish(ctx, out, deliveryNoteID)
	c.log.Info("equipment verified",
		zap.Int64("operator_id", operatorID),
		zap.Int64("delivery_note_id", deliveryNoteID),
		zap.Int64("equipment_id", item.ID),
		zap.Bool("with_photo", evidence != nil),
	)
	return out, nil
}

// Undo clears verification on an item. Repeating it succeeds.
func (c *Controller) Undo(ctx context.Context, operatorID, equipmentID int64) (*Outcome, error) {
	before, err := c.engine.Equipment(ctx, equipmentID)
	if err != nil {
		return nil, c.fail(err)
	}
	item, err := c.engine.Unverify(ctx, equipmentID)
	if err != nil {
		return nil, c.fail(err)
	}
	if before.IsVerified {
		c.record(ctx, operatorID, audit.ActionUnverify, before, item)
	}

	out := &Outcome{Item: item, Notice: unverifiedNotice(item)}
	c.finish(ctx, out, item.DeliveryNoteID)
	c.log.Info("equipment unverified", zap.Int64("operator_id", operatorID), zap.Int64("equipment_id", equipmentID))
	return out, nil
}

// Progress is the live progress of one delivery note.
func (c *Controller) Progress(ctx context.Context, deliveryNoteID int64) (progress.Progress, error) {
	return c.aggregator.ForDeliveryNote(ctx, deliveryNoteID)
}

func (c *Controller) finish(ctx context.Context, out *Outcome, deliveryNoteID int64) {
	out.Notice.At = c.now()
	p, err := c.aggregator.ForDeliveryNote(ctx, deliveryNoteID)
	if err != nil {
		// the verification is committed; report it without progress
		c.log.Warn("progress refresh failed", zap.Int64("delivery_note_id", deliveryNoteID), zap.Error(err))
		out.ProgressStale = true
		c.notifier.Notify(out.Notice)
		return
	}
	out.Progress = p
	out.Complete = p.Complete()

	c.publish(ctx, deliveryNoteID, p)
	c.notifier.Notify(out.Notice)
}

func (c *Controller) fail(err error) error {
	n := NoticeFor(err)
	n.At = c.now()
	c.notifier.Notify(n)
	if n.Kind == KindStoreUnavailable || n.Kind == KindFailed || n.Kind == KindEvidenceUploadFailed {
		c.log.Error("verification attempt failed", zap.String("kind", string(n.Kind)), zap.Error(err))
	}
	return err
}

func (c *Controller) discard(ctx context.Context, evidence *upload.Upload) {
	if evidence == nil || c.evidence == nil {
		return
	}
	if err := c.evidence.Discard(context.WithoutCancel(ctx), evidence.ID); err != nil {
		c.log.Warn("failed to discard evidence", zap.String("upload_id", evidence.ID), zap.Error(err))
	}
}

func (c *Controller) record(ctx context.Context, operatorID int64, action audit.Action, before, after *inventory.EquipmentItem) {
	if c.audit == nil {
		return
	}
	if err := c.audit.Record(ctx, operatorID, action, before, after); err != nil {
		c.log.Warn("audit record failed", zap.String("action", string(action)), zap.Int64("equipment_id", after.ID), zap.Error(err))
	}
}

// publish pushes fresh progress for the note and its order and project.
func (c *Controller) publish(ctx context.Context, deliveryNoteID int64, noteProgress progress.Progress) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(live.DeliveryNoteTopic(deliveryNoteID), progressEvent(progress.LevelDeliveryNote, deliveryNoteID, noteProgress))

	if c.store == nil {
		return
	}
	note, err := c.store.GetDeliveryNote(ctx, deliveryNoteID)
	if err != nil {
		c.logPublishErr(err)
		return
	}
	order, err := c.aggregator.OrderReport(ctx, note.OrderID)
	if err != nil {
		c.logPublishErr(err)
		return
	}
	c.publisher.Publish(live.OrderTopic(note.OrderID), progressEvent(progress.LevelOrder, note.OrderID, order.Progress))

	o, err := c.store.GetOrder(ctx, note.OrderID)
	if err != nil {
		c.logPublishErr(err)
		return
	}
	project, err := c.aggregator.ForProject(ctx, o.ProjectID)
	if err != nil {
		c.logPublishErr(err)
		return
	}
	c.publisher.Publish(live.ProjectTopic(o.ProjectID), progressEvent(progress.LevelProject, o.ProjectID, project))
}

func (c *Controller) logPublishErr(err error) {
	if !errors.Is(err, context.Canceled) {
		c.log.Warn("live progress publish skipped", zap.Error(err))
	}
}

func progressEvent(level progress.Level, id int64, p progress.Progress) *live.Event {
	return &live.Event{
		Type: live.EventProgressUpdated,
		Payload: progress.Report{
			Level:    level,
			ID:       id,
			Progress: p,
			Complete: p.Complete(),
		},
	}
}
