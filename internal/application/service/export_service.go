package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/field-report/internal/application/port"
	"github.com/garyjia/field-report/internal/domain/entity"
	"github.com/garyjia/field-report/internal/domain/report"
	"github.com/garyjia/field-report/internal/domain/workflow"
	"github.com/garyjia/field-report/internal/infrastructure/pdf"
	"github.com/garyjia/field-report/internal/infrastructure/render"
	"github.com/garyjia/field-report/internal/infrastructure/sheet"
)

// DefaultDeliveryTimeout bounds one delivery attempt
const DefaultDeliveryTimeout = 30 * time.Second

// PageRenderer rasterizes page descriptors onto a surface it hands out
type PageRenderer interface {
	NewSurface() *render.Surface
	Render(surface *render.Surface, desc report.PageDescriptor, mark render.Mark) (*render.RenderedPage, error)
}

// DocumentAssembler joins rendered pages into one artifact
type DocumentAssembler interface {
	Assemble(pages []*render.RenderedPage, meta pdf.Meta) (*pdf.Artifact, error)
}

// PreviewGenerator produces a thumbnail of an assembled document
type PreviewGenerator interface {
	Thumbnail(data []byte) ([]byte, error)
}

// FieldSheetWriter produces the spreadsheet copy of the field table
type FieldSheetWriter interface {
	Write(in sheet.Input) ([]byte, error)
}

// ProgressFunc is told after each rendered page how many of total pages are done
type ProgressFunc func(done, total int)

// ExportRequest is everything one export needs. Values and Photos are copied before use.
type ExportRequest struct {
	SessionID string
	Template  *entity.Template
	Values    entity.FormValues
	Notes     string
	Photos    []entity.Photo
	Deliver   bool
	Address   string
}

// ExportResult describes one finished or failed export
type ExportResult struct {
	DocumentID    string
	State         workflow.State
	Artifact      *pdf.Artifact
	Record        *entity.DocumentRecord
	Warnings      []string
	DeliveryError error
	Transitions   []workflow.Transition
	Error         error
}

// Delivered returns true if the artifact reached the delivery channel
func (r *ExportResult) Delivered() bool {
	return r.Record != nil && r.Record.IsDelivered()
}

// ExportOptions toggles the optional side outputs of an export
type ExportOptions struct {
	Preview         bool
	FieldSheet      bool
	DeliveryTimeout time.Duration
}

// ExportService turns a form snapshot into a paginated document
type ExportService interface {
	Export(ctx context.Context, req ExportRequest, progress ProgressFunc) (*ExportResult, error)
}

// ExportDeps groups the collaborators of the export service
type ExportDeps struct {
	Renderer  PageRenderer
	Assembler DocumentAssembler
	Previewer PreviewGenerator
	Sheets    FieldSheetWriter
	Storage   port.FileStorage
	Folders   port.FolderManager
	Documents port.DocumentRepository
	TxManager port.TransactionManager
	Delivery  port.DeliverySender
	Lock      port.SessionLock
}

type exportServiceImpl struct {
	deps   ExportDeps
	opts   ExportOptions
	logger Logger
	newID  func() string
	now    func() time.Time
}

// NewExportService creates a new ExportService. Previewer, Sheets, Documents and Delivery
// may be nil; the matching step is then skipped.
func NewExportService(deps ExportDeps, opts ExportOptions, logger Logger) ExportService {
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDeliveryTimeout
	}
	return &exportServiceImpl{
		deps:   deps,
		opts:   opts,
		logger: logger,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// exportRun carries the state of one Export call
type exportRun struct {
	req      ExportRequest
	result   *ExportResult
	machine  workflow.StateMachine
	values   entity.FormValues
	photos   []entity.Photo
	genAt    time.Time
	info     *report.InfoPage
	folder   string
	artifact *pdf.Artifact
}

// Export runs Idle -> Building -> Rendering -> Assembling -> [Delivering] -> Done.
// Validation failures leave the machine in Idle and return *report.ValidationError.
// Render and assembly failures move it to Failed and return the error along with the
// result. Persistence and delivery failures are recorded as warnings only.
func (s *exportServiceImpl) Export(ctx context.Context, req ExportRequest, progress ProgressFunc) (*ExportResult, error) {
	if req.Template == nil {
		return nil, &report.ValidationError{Field: "template", Message: "is required"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	documentID := s.newID()
	lockKey := "export:" + req.SessionID
	if req.SessionID == "" {
		lockKey = "export:" + documentID
	}

	release, err := s.deps.Lock.Acquire(ctx, lockKey)
	if errors.Is(err, port.ErrLocked) {
		s.logger.Warn("Export rejected, session busy", "session_id", req.SessionID)
		return nil, ErrExportInProgress
	}
	if err != nil {
		s.logger.Error("Failed to acquire export lock", "error", err, "session_id", req.SessionID)
		return nil, fmt.Errorf("acquire export lock: %w", err)
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.logger.Warn("Failed to release export lock", "error", err, "session_id", req.SessionID)
		}
	}()

	run := &exportRun{
		req:    req,
		result: &ExportResult{DocumentID: documentID},
		values: req.Values.Clone(),
		photos: append([]entity.Photo(nil), req.Photos...),
		genAt:  s.now(),
	}

	var validationErr error
	run.machine = workflow.NewExportMachine(
		func(ctx context.Context) bool {
			validationErr = report.Validate(run.values)
			return validationErr == nil
		},
		s.logTransition(documentID),
	)
	defer func() {
		run.result.State = run.machine.State()
		run.result.Transitions = run.machine.History()
	}()

	if err := run.machine.Fire(ctx, workflow.TriggerStart); err != nil {
		if validationErr != nil {
			s.logger.Info("Export rejected by validation", "session_id", req.SessionID, "error", validationErr)
			return nil, validationErr
		}
		return nil, fmt.Errorf("start export: %w", err)
	}

	// Building has started: caller cancellation no longer aborts the export
	workCtx := context.WithoutCancel(ctx)

	s.logger.Info("Export started",
		"document_id", documentID,
		"session_id", req.SessionID,
		"template_id", req.Template.ID,
		"photos", len(run.photos))

	if err := s.renderAndAssemble(workCtx, run, progress); err != nil {
		run.result.Error = err
		return run.result, err
	}

	s.persist(workCtx, run)

	if err := s.deliver(workCtx, run); err != nil {
		return run.result, err
	}

	if err := run.machine.Fire(workCtx, workflow.TriggerComplete); err != nil {
		return run.result, fmt.Errorf("complete export: %w", err)
	}

	s.logger.Info("Export completed",
		"document_id", documentID,
		"filename", run.artifact.Filename,
		"pages", run.artifact.PageCount,
		"size", run.artifact.Size(),
		"warnings", len(run.result.Warnings))

	return run.result, nil
}

func (s *exportServiceImpl) renderAndAssemble(ctx context.Context, run *exportRun, progress ProgressFunc) error {
	pages := report.Build(run.req.Template, run.values, run.req.Notes, run.photos)
	run.info, _ = pages[0].(*report.InfoPage)

	if err := run.machine.Fire(ctx, workflow.TriggerBeginRender); err != nil {
		return fmt.Errorf("begin render: %w", err)
	}

	mark := render.Mark{GeneratedAt: run.genAt, DocumentID: run.result.DocumentID}
	surface := s.deps.Renderer.NewSurface()
	rendered := make([]*render.RenderedPage, 0, len(pages))

	for _, desc := range pages {
		page, err := s.deps.Renderer.Render(surface, desc, mark)
		if err != nil {
			s.logger.Error("Failed to render page",
				"error", err,
				"document_id", run.result.DocumentID,
				"page_index", desc.Index(),
				"page_count", desc.Count())
			s.fail(ctx, run)
			return err
		}
		rendered = append(rendered, page)
		if err := run.machine.Fire(ctx, workflow.TriggerPageRendered); err != nil {
			return fmt.Errorf("record rendered page: %w", err)
		}
		if progress != nil {
			progress(len(rendered), len(pages))
		}
	}

	if err := run.machine.Fire(ctx, workflow.TriggerRenderComplete); err != nil {
		return fmt.Errorf("complete render: %w", err)
	}

	artifact, err := s.deps.Assembler.Assemble(rendered, pdf.Meta{
		Title:        run.req.Template.Title,
		Author:       run.values.PreparerName,
		Subject:      run.req.Template.Description,
		Date:         run.values.Date,
		GeneratedAt:  run.genAt,
		DocumentID:   run.result.DocumentID,
		Organization: run.values.OrganizationName,
	})
	if err != nil {
		s.logger.Error("Failed to assemble document",
			"error", err,
			"document_id", run.result.DocumentID,
			"pages", len(rendered))
		s.fail(ctx, run)
		return err
	}

	run.artifact = artifact
	run.result.Artifact = artifact
	return nil
}

func (s *exportServiceImpl) fail(ctx context.Context, run *exportRun) {
	if err := run.machine.Fire(ctx, workflow.TriggerFail); err != nil {
		s.logger.Error("Failed to record export failure", "error", err, "document_id", run.result.DocumentID)
	}
}

// persist stores the artifact, its side outputs and the document record
func (s *exportServiceImpl) persist(ctx context.Context, run *exportRun) {
	artifact := run.artifact
	info := run.info
	record := &entity.DocumentRecord{
		ID:            run.result.DocumentID,
		SessionID:     run.req.SessionID,
		TemplateID:    run.req.Template.ID,
		Title:         run.req.Template.Title,
		Filename:      artifact.Filename,
		PageCount:     artifact.PageCount,
		SizeBytes:     artifact.Size(),
		FieldSnapshot: fieldSnapshot(run.values, info),
		Photos:        entity.PhotoRefs(run.photos),
		Status:        entity.DocumentStatusGenerated,
		GeneratedAt:   run.genAt,
		CreatedAt:     run.genAt,
	}
	if info != nil {
		record.Notes = info.Notes
	}
	run.result.Record = record

	if s.deps.Storage == nil || s.deps.Folders == nil {
		return
	}

	run.folder = s.deps.Folders.DocumentFolder(record.ID, run.genAt)
	base := strings.TrimSuffix(artifact.Filename, ".pdf")

	filePath := path.Join(run.folder, artifact.Filename)
	if err := s.deps.Storage.Save(ctx, filePath, artifact.Bytes); err != nil {
		s.warn(run, "document file was not saved", "error", err, "path", filePath)
	} else {
		record.FilePath = filePath
	}

	if s.opts.Preview && s.deps.Previewer != nil && record.FilePath != "" {
		previewPath := path.Join(run.folder, base+pdf.PreviewFileNameSuffix)
		if thumb, err := s.deps.Previewer.Thumbnail(artifact.Bytes); err != nil {
			s.warn(run, "preview was not generated", "error", err)
		} else if err := s.deps.Storage.Save(ctx, previewPath, thumb); err != nil {
			s.warn(run, "preview was not saved", "error", err, "path", previewPath)
		} else {
			record.PreviewPath = previewPath
		}
	}

	if s.opts.FieldSheet && s.deps.Sheets != nil && record.FilePath != "" {
		sheetPath := path.Join(run.folder, base+sheet.FileSuffix)
		in := sheet.Input{
			DocumentID:   record.ID,
			Title:        record.Title,
			Organization: run.values.OrganizationName,
			PreparedBy:   run.values.PreparerName,
			Date:         run.values.Date,
			GeneratedAt:  run.genAt,
			Notes:        record.Notes,
			Photos:       record.Photos,
		}
		if info != nil {
			in.Rows = info.Rows()
		}
		if data, err := s.deps.Sheets.Write(in); err != nil {
			s.warn(run, "field sheet was not generated", "error", err)
		} else if err := s.deps.Storage.Save(ctx, sheetPath, data); err != nil {
			s.warn(run, "field sheet was not saved", "error", err, "path", sheetPath)
		} else {
			record.SheetPath = sheetPath
		}
	}

	if s.deps.Documents == nil {
		return
	}
	create := func(ctx context.Context) error {
		return s.deps.Documents.Create(ctx, record)
	}
	var err error
	if s.deps.TxManager != nil {
		err = s.deps.TxManager.WithTransaction(ctx, create)
	} else {
		err = create(ctx)
	}
	if err != nil {
		s.warn(run, "document record was not saved", "error", err, "document_id", record.ID)
	}
}

// deliver dispatches the artifact when requested. Only state machine misuse is returned;
// delivery failures become warnings and a DELIVERY_FAILED record.
func (s *exportServiceImpl) deliver(ctx context.Context, run *exportRun) error {
	if !run.req.Deliver {
		return nil
	}
	address := strings.TrimSpace(run.req.Address)
	if address == "" {
		s.warn(run, "delivery skipped: no address")
		return nil
	}
	if s.deps.Delivery == nil {
		s.warn(run, "delivery skipped: no delivery channel configured")
		return nil
	}

	if err := run.machine.Fire(ctx, workflow.TriggerDeliver); err != nil {
		return fmt.Errorf("begin delivery: %w", err)
	}

	deliverCtx, cancel := context.WithTimeout(ctx, s.opts.DeliveryTimeout)
	defer cancel()

	update := port.DeliveryUpdate{Address: address}
	err := s.deps.Delivery.Deliver(deliverCtx, port.DeliveryRequest{
		Address:     address,
		DataURI:     run.artifact.DataURI,
		DisplayName: run.artifact.Filename,
	})
	if err != nil {
		deliveryErr := &report.DeliveryError{Address: address, Err: err}
		run.result.DeliveryError = deliveryErr
		s.warn(run, deliveryErr.Error())
		update.Status = entity.DocumentStatusDeliveryFailed
		update.Error = err.Error()
	} else {
		deliveredAt := s.now()
		update.Status = entity.DocumentStatusDelivered
		update.DeliveredAt = &deliveredAt
		s.logger.Info("Document delivered", "document_id", run.result.DocumentID, "address", address)
	}

	record := run.result.Record
	record.Status = update.Status
	record.DeliveryAddress = update.Address
	record.DeliveryError = update.Error
	record.DeliveredAt = update.DeliveredAt

	if s.deps.Documents != nil {
		if err := s.deps.Documents.UpdateDelivery(ctx, record.ID, update); err != nil {
			s.warn(run, "delivery status was not saved", "error", err, "document_id", record.ID)
		}
	}
	return nil
}

func (s *exportServiceImpl) warn(run *exportRun, msg string, keysAndValues ...interface{}) {
	run.result.Warnings = append(run.result.Warnings, msg)
	s.logger.Warn(msg, append([]interface{}{"document_id", run.result.DocumentID}, keysAndValues...)...)
}

func (s *exportServiceImpl) logTransition(documentID string) workflow.TransitionFunc {
	return func(ctx context.Context, t workflow.Transition) {
		if t.Trigger == workflow.TriggerPageRendered {
			return
		}
		s.logger.Info("Export state changed",
			"document_id", documentID,
			"from", t.From.String(),
			"to", t.To.String(),
			"trigger", string(t.Trigger))
	}
}

func fieldSnapshot(values entity.FormValues, info *report.InfoPage) map[string]string {
	snapshot := map[string]string{
		"organization_name": values.OrganizationName,
		"preparer_name":     values.PreparerName,
	}
	if !values.Date.IsZero() {
		snapshot["date"] = values.Date.Format("2006-01-02")
	}
	if info != nil {
		for _, row := range info.Rows() {
			snapshot[row.Key] = row.Value
		}
	}
	return snapshot
}
