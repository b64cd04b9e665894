package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/summitops/guest-transport/internal/importer"
	"github.com/summitops/guest-transport/internal/metrics"
	"github.com/summitops/guest-transport/internal/middleware"
	"github.com/summitops/guest-transport/internal/model"
	"github.com/summitops/guest-transport/internal/queue"
	"github.com/summitops/guest-transport/internal/repository"
	queue_publisher "github.com/summitops/guest-transport/internal/service"
)

// maxUploadBytes caps roster uploads.  Real rosters run to a few
// hundred rows; anything past this is not a guest list.
const maxUploadBytes = 10 << 20

// ImportHandler drives the import workflow: upload a roster, adjust
// the column mapping, review the computed diff and finally apply it.
// Sessions live in redis until they are applied or cancelled; the
// guest store is only touched by Apply, which runs every write in a
// single transaction.  JWT authentication has already happened in
// middleware; Apply additionally requires the crew role via the
// route group.
type ImportHandler struct {
	Sessions *repository.SessionRepo // import session storage (redis)
	Guests   *repository.GuestRepo   // guest reads for diffing, writes for apply
	Audit    *repository.AuditRepo   // audit entries written alongside apply
}

// NewImportHandler constructs an ImportHandler.  All dependencies
// must be non-nil.
func NewImportHandler(sessions *repository.SessionRepo, guests *repository.GuestRepo, audit *repository.AuditRepo) *ImportHandler {
	if sessions == nil || guests == nil || audit == nil {
		panic("nil repository passed to NewImportHandler")
	}
	return &ImportHandler{
		Sessions: sessions,
		Guests:   guests,
		Audit:    audit,
	}
}

// Upload handles POST /v1/imports.  It accepts a multipart form with
// a single "file" part (xlsx or CSV), parses it, auto-maps columns
// to canonical fields and runs cell validation.  On success a new
// session is stored and returned with 201.  Files that cannot be
// parsed into at least one data row are rejected with 400 and no
// session is created.
func (h *ImportHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file part is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read uploaded file"})
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read uploaded file"})
	}
	if len(data) > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
	}

	parsed, err := importer.ParseSpreadsheet(fh.Filename, data)
	if err != nil {
		if errors.Is(err, importer.ErrEmptyFile) || errors.Is(err, importer.ErrNoDataRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file", "message": err.Error()})
	}

	s := &model.ImportSession{
		ID:        uuid.NewString(),
		CreatedBy: middleware.Actor(c),
		CreatedAt: time.Now().UTC(),
		Status:    model.SessionStatusMapping,
		FileName:  fh.Filename,
		Columns:   parsed.Columns,
		Rows:      parsed.Rows,
		Mapping:   importer.AutoMap(parsed.Columns),
		DateOrder: model.DateOrderDayFirst,
		Issues:    importer.ValidateCells(parsed.Columns, parsed.Rows),
	}
	if err := h.Sessions.Save(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store session"})
	}
	resp := sessionResponse(s)
	if len(parsed.Warnings) > 0 {
		resp["warnings"] = parsed.Warnings
	}
	return c.JSON(http.StatusCreated, resp)
}

// Get handles GET /v1/imports/:id.  It returns the current session
// state: columns, sample rows, mapping, outstanding required fields,
// validation issues and, once computed, the diff and its alerts.
func (h *ImportHandler) Get(c echo.Context) error {
	s, err := h.loadSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse(s))
}

// SetMapping handles PUT /v1/imports/:id/mapping.  The body names a
// source column and the canonical field it should feed, or null to
// unmap the column.  Mapping a field already held by another column
// moves it; the previous column drops back to unmapped.  Changing
// the mapping invalidates any previously computed diff.
func (h *ImportHandler) SetMapping(c echo.Context) error {
	s, err := h.loadSession(c)
	if err != nil {
		return err
	}
	if s.Status == model.SessionStatusApplied {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session already applied"})
	}
	var body struct {
		Column string  `json:"column"`
		Field  *string `json:"field"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Column = strings.TrimSpace(body.Column)
	if body.Column == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "column is required"})
	}
	if !hasColumn(s.Columns, body.Column) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown column", "column": body.Column})
	}
	if body.Field == nil || *body.Field == "" {
		s.Mapping.SetColumn(body.Column, "")
	} else {
		field, ok := importer.KnownField(*body.Field)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown field", "field": *body.Field})
		}
		s.Mapping.SetColumn(body.Column, field)
	}
	h.invalidateDiff(s)
	if err := h.Sessions.Save(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store session"})
	}
	return c.JSON(http.StatusOK, sessionResponse(s))
}

// SetOptions handles PUT /v1/imports/:id/options.  The only option
// today is dateOrder, which controls how ambiguous numeric dates in
// this file are read.  Changing it invalidates any computed diff.
func (h *ImportHandler) SetOptions(c echo.Context) error {
	s, err := h.loadSession(c)
	if err != nil {
		return err
	}
	if s.Status == model.SessionStatusApplied {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session already applied"})
	}
	var body struct {
		DateOrder string `json:"dateOrder"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	switch model.DateOrder(body.DateOrder) {
	case model.DateOrderDayFirst, model.DateOrderMonthFirst:
		s.DateOrder = model.DateOrder(body.DateOrder)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dateOrder must be day_first or month_first"})
	}
	h.invalidateDiff(s)
	if err := h.Sessions.Save(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store session"})
	}
	return c.JSON(http.StatusOK, sessionResponse(s))
}

// ComputeDiff handles POST /v1/imports/:id/diff.  It transforms the
// parsed rows through the current mapping, diffs them against a
// fresh snapshot of the guest list and runs the analyzer.  The diff
// is stored on the session for review; nothing in the guest store
// changes.  Returns 422 while required fields are still unmapped.
func (h *ImportHandler) ComputeDiff(c echo.Context) error {
	s, err := h.loadSession(c)
	if err != nil {
		return err
	}
	if s.Status == model.SessionStatusApplied {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session already applied"})
	}
	if missing := importer.MissingRequired(s.Mapping); len(missing) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":   "required fields not mapped",
			"missing": missing,
		})
	}
	guests, err := h.Guests.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load guests"})
	}

	started := time.Now()
	rows := importer.ApplyMapping(s.Rows, s.Mapping, s.DateOrder)
	diff := importer.ComputeDiff(rows, guests)
	alerts := importer.AnalyzeDiff(diff, guests)
	metrics.RecordDiffDuration(float64(time.Since(started).Milliseconds()))

	now := time.Now().UTC()
	s.Diff = diff
	s.Alerts = alerts
	s.DiffAt = &now
	s.Status = model.SessionStatusDiffed
	if err := h.Sessions.Save(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store session"})
	}
	return c.JSON(http.StatusOK, sessionResponse(s))
}

// Apply handles POST /v1/imports/:id/apply.  It commits the reviewed
// diff to the guest store in one transaction: added rows insert,
// modified guests update field by field, and removed guests soft
// delete when the removeDeleted flag is set.  Every write carries
// the version the diff observed, so any guest edited since the diff
// was computed aborts the whole batch with 409; the caller should
// recompute the diff and review it again.  Emails that became taken
// since the diff abort with 422 listing the offending rows.  Each
// mutation writes an audit entry correlated by session ID, and a
// summary event is published once the transaction commits.
func (h *ImportHandler) Apply(c echo.Context) error {
	s, err := h.loadSession(c)
	if err != nil {
		return err
	}
	if s.Status == model.SessionStatusApplied {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session already applied"})
	}
	if s.Diff == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "diff not computed"})
	}
	var body struct {
		RemoveDeleted bool `json:"removeDeleted"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	actor := middleware.Actor(c)
	ctx := c.Request().Context()
	tx, err := h.Guests.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Duplicate emails do not poison the transaction, so all added
	// rows are attempted before deciding; the response then lists
	// every collision instead of just the first.
	conflicts := make([]model.RowError, 0)
	for _, row := range s.Diff.Added {
		g := &model.Guest{}
		for f, v := range row.Fields {
			g.SetField(f, v)
		}
		if err := h.Guests.CreateTx(ctx, tx, g); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				conflicts = append(conflicts, model.RowError{
					Row:     row.Row,
					Field:   model.FieldEmail,
					Message: "email already registered: " + g.Email,
				})
				continue
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create guest"})
		}
		entry := &model.AuditEntry{
			GuestID:      g.ID,
			Op:           model.AuditOpCreate,
			ChangeSource: model.ChangeSourceImport,
			SessionID:    s.ID,
			Actor:        actor,
			Changes:      createChanges(row),
		}
		if err := h.Audit.InsertTx(ctx, tx, entry); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
		}
	}

	for _, mg := range s.Diff.Modified {
		err := h.Guests.UpdateFieldsTx(ctx, tx, mg.GuestID, mg.Version, mg.Changes)
		if err != nil {
			if errors.Is(err, repository.ErrVersionConflict) || errors.Is(err, repository.ErrNotFound) {
				metrics.RecordApplyFailure("version_conflict")
				return c.JSON(http.StatusConflict, echo.Map{
					"error":   "guest changed since diff was computed",
					"guest":   mg.Email,
					"message": "recompute the diff and review again",
				})
			}
			if errors.Is(err, repository.ErrDuplicateEmail) {
				conflicts = append(conflicts, model.RowError{
					Row:     mg.Row,
					Field:   model.FieldEmail,
					Message: "email already registered: " + mg.Email,
				})
				continue
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update guest"})
		}
		entry := &model.AuditEntry{
			GuestID:      mg.GuestID,
			Op:           model.AuditOpUpdate,
			ChangeSource: model.ChangeSourceImport,
			SessionID:    s.ID,
			Actor:        actor,
			Changes:      mg.Changes,
		}
		if err := h.Audit.InsertTx(ctx, tx, entry); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
		}
	}

	removed := 0
	if body.RemoveDeleted {
		for _, ref := range s.Diff.Removed {
			err := h.Guests.SoftDeleteTx(ctx, tx, ref.GuestID, ref.Version)
			if err != nil {
				if errors.Is(err, repository.ErrVersionConflict) || errors.Is(err, repository.ErrNotFound) {
					metrics.RecordApplyFailure("version_conflict")
					return c.JSON(http.StatusConflict, echo.Map{
						"error":   "guest changed since diff was computed",
						"guest":   ref.Email,
						"message": "recompute the diff and review again",
					})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to remove guest"})
			}
			entry := &model.AuditEntry{
				GuestID:      ref.GuestID,
				Op:           model.AuditOpDelete,
				ChangeSource: model.ChangeSourceImport,
				SessionID:    s.ID,
				Actor:        actor,
			}
			if err := h.Audit.InsertTx(ctx, tx, entry); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to write audit entry"})
			}
			removed++
		}
	}

	if len(conflicts) > 0 {
		metrics.RecordApplyFailure("duplicate_email")
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "emails taken since diff was computed",
			"rows":  conflicts,
		})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	added := len(s.Diff.Added)
	modified := len(s.Diff.Modified)
	metrics.RecordImportApplied()
	metrics.RecordImportRows("added", added)
	metrics.RecordImportRows("modified", modified)
	metrics.RecordImportRows("removed", removed)
	metrics.RecordImportRows("unchanged", len(s.Diff.Unchanged))
	metrics.RecordImportRows("errors", len(s.Diff.Errors))

	// Best effort: the import is committed whether or not the event
	// reaches the broker.
	_ = queue_publisher.PublishImportApplied(ctx, queue.ImportAppliedEvent{
		SessionID: s.ID,
		Actor:     actor,
		Added:     added,
		Modified:  modified,
		Removed:   removed,
		AppliedAt: time.Now().UTC().Format(time.RFC3339),
	})

	s.Status = model.SessionStatusApplied
	if err := h.Sessions.Save(ctx, s); err != nil {
		c.Logger().Warnf("import applied but session %s not marked: %v", s.ID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"added":    added,
		"modified": modified,
		"removed":  removed,
	})
}

// Cancel handles DELETE /v1/imports/:id.  Sessions never touch the
// guest store before apply, so cancelling is pure teardown: the
// redis blob is deleted and nothing else happens.  Cancelling an
// already applied session is rejected; the audit trail it produced
// must stay reachable by session ID.
func (h *ImportHandler) Cancel(c echo.Context) error {
	s, err := h.loadSession(c)
	if err != nil {
		return err
	}
	if s.Status == model.SessionStatusApplied {
		return c.JSON(http.StatusConflict, echo.Map{"error": "session already applied"})
	}
	if err := h.Sessions.Delete(c.Request().Context(), s.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete session"})
	}
	return c.NoContent(http.StatusNoContent)
}

// loadSession fetches the session named by the :id path parameter.
// On failure it writes the error response itself and returns the
// error from c.JSON, so callers can simply `return err`.
func (h *ImportHandler) loadSession(c echo.Context) (*model.ImportSession, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
	}
	s, err := h.Sessions.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "session not found or expired"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session"})
	}
	return s, nil
}

// invalidateDiff drops a computed diff after the mapping or options
// change; the stale diff no longer describes what apply would do.
func (h *ImportHandler) invalidateDiff(s *model.ImportSession) {
	if s.Diff == nil {
		return
	}
	s.Diff = nil
	s.Alerts = nil
	s.DiffAt = nil
	s.Status = model.SessionStatusMapping
}

// sessionSampleRows caps how many raw rows the session response
// carries; enough for a mapping preview without shipping the file
// back on every poll.
const sessionSampleRows = 20

// sessionResponse shapes a session for API responses.  The full raw
// row set stays in redis; clients get the columns, a sample, the
// mapping state and everything computed so far.
func sessionResponse(s *model.ImportSession) echo.Map {
	sample := s.Rows
	if len(sample) > sessionSampleRows {
		sample = sample[:sessionSampleRows]
	}
	resp := echo.Map{
		"id":               s.ID,
		"status":           s.Status,
		"file_name":        s.FileName,
		"created_by":       s.CreatedBy,
		"created_at":       s.CreatedAt.Format(time.RFC3339),
		"columns":          s.Columns,
		"row_count":        len(s.Rows),
		"sample_rows":      sample,
		"mapping":          s.Mapping,
		"missing_required": importer.MissingRequired(s.Mapping),
		"date_order":       s.DateOrder,
		"issues":           s.Issues,
	}
	if s.Diff != nil {
		resp["diff"] = s.Diff
		resp["alerts"] = s.Alerts
		if s.DiffAt != nil {
			resp["diff_at"] = s.DiffAt.Format(time.RFC3339)
		}
	}
	return resp
}

// createChanges renders an added row as audit field changes, old
// values empty.  Fields are emitted in canonical declaration order
// so entries stay comparable across rows.
func createChanges(row model.CanonicalRow) []model.FieldChange {
	changes := make([]model.FieldChange, 0, len(row.Fields))
	for _, f := range model.AllCanonicalFields {
		v, ok := row.Fields[f]
		if !ok {
			continue
		}
		changes = append(changes, model.FieldChange{
			Field:    f,
			OldValue: "",
			NewValue: v,
			Kind:     importer.FieldKind(f),
		})
	}
	return changes
}

// hasColumn reports whether name is one of the parsed header
// columns.
func hasColumn(columns []string, name string) bool {
	for _, col := range columns {
		if col == name {
			return true
		}
	}
	return false
}
