package patient

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/walkin-api/internal/form"
	"github.com/jwalitptl/walkin-api/internal/handler"
	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/report"
	patientsvc "github.com/jwalitptl/walkin-api/internal/service/patient"
	apperrors "github.com/jwalitptl/walkin-api/pkg/errors"
)

// FormRequest is the operator's input so far. Sub-field values are replayed
// through the reducer, so only sub-fields the selects imply are accepted.
type FormRequest struct {
	PatientNumber string            `json:"patient_number" binding:"required"`
	Values        map[string]string `json:"values"`
	SubValues     map[string]string `json:"sub_values"`
}

type ChangeRequest struct {
	FormRequest
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type SubmitRequest struct {
	Type string `json:"type" binding:"required,patienttype"`
	FormRequest
}

// FormView is a form state together with its rendered widgets.
type FormView struct {
	State   form.State    `json:"state"`
	Widgets []form.Widget `json:"widgets"`
}

type SubmitResponse struct {
	Record *model.PatientRecord `json:"record"`
	Form   FormView             `json:"form"`
}

func newFormView(s form.State) FormView {
	return FormView{State: s, Widgets: form.Render(s)}
}

type Handler struct {
	service patientsvc.PatientService
}

func NewHandler(service patientsvc.PatientService) *Handler {
	return &Handler{service: service}
}

// RegisterFormRoutes wires the registration form endpoints, which never
// touch the store.
func (h *Handler) RegisterFormRoutes(r *gin.RouterGroup) {
	forms := r.Group("/forms")
	{
		forms.GET("/:type", h.NewForm)
		forms.POST("/:type/change", h.ChangeForm)
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.SubmitPatient)
		patients.GET("", h.ListPatients)
		patients.GET("/search", h.SearchPatients)
		patients.GET("/deleted", h.ListDeleted)
		patients.GET("/export", h.ExportPatients)
		patients.DELETE("", h.DeleteAll)
		patients.DELETE("/:id", h.SoftDelete)
		patients.POST("/:id/restore", h.Restore)
	}
}

// RegisterPageRoutes wires the HTML pages, which sit behind the login redirect.
func (h *Handler) RegisterPageRoutes(r *gin.RouterGroup) {
	r.GET("/patients/print", h.PrintPatients)
}

func (h *Handler) NewForm(c *gin.Context) {
	t, err := model.ParsePatientType(c.Param("type"))
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	st, err := h.service.NewForm(handler.Session(c), t)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(newFormView(st)))
}

func (h *Handler) ChangeForm(c *gin.Context) {
	t, err := model.ParsePatientType(c.Param("type"))
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	var req ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("invalid form request", err))
		return
	}
	st, err := restore(t, req.FormRequest)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	next, err := h.service.ChangeForm(handler.Session(c), st, req.Field, req.Value)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(newFormView(next)))
}

func (h *Handler) SubmitPatient(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("invalid form request", err))
		return
	}
	t, err := model.ParsePatientType(req.Type)
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	st, err := restore(t, req.FormRequest)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	record, fresh, err := h.service.Submit(c.Request.Context(), handler.Session(c), st)
	if err != nil {
		// the form goes back untouched so nothing the operator typed is lost
		handler.RespondErrorWithData(c, err, newFormView(st))
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(SubmitResponse{
		Record: record,
		Form:   newFormView(fresh),
	}))
}

func restore(t model.PatientType, req FormRequest) (form.State, error) {
	if !strings.HasPrefix(req.PatientNumber, form.PatientNumberPrefix(t)+"-") {
		return form.State{}, apperrors.BadRequest(
			fmt.Sprintf("patient number %q does not belong to a %s form", req.PatientNumber, t), nil)
	}
	st, err := form.Restore(t, req.PatientNumber, req.Values, req.SubValues)
	if err != nil {
		return form.State{}, apperrors.BadRequest(err.Error(), err)
	}
	return st, nil
}

// parseTypeQuery reads ?type=, where blank and "all" mean every type.
func parseTypeQuery(c *gin.Context) (model.PatientType, error) {
	v := strings.TrimSpace(c.Query("type"))
	if v == "" || strings.EqualFold(v, "all") {
		return "", nil
	}
	t, err := model.ParsePatientType(v)
	if err != nil {
		return "", apperrors.BadRequest(err.Error(), err)
	}
	return t, nil
}

func (h *Handler) list(c *gin.Context, onlyDeleted bool) ([]*model.PatientRecord, bool) {
	t, err := parseTypeQuery(c)
	if err != nil {
		handler.RespondError(c, err)
		return nil, false
	}
	records, err := h.service.List(c.Request.Context(), handler.Session(c), &model.PatientFilters{
		Type:        t,
		SearchTerm:  c.Query("q"),
		OnlyDeleted: onlyDeleted,
	})
	if err != nil {
		handler.RespondError(c, err)
		return nil, false
	}
	return records, true
}

func (h *Handler) ListPatients(c *gin.Context) {
	records, ok := h.list(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) SearchPatients(c *gin.Context) {
	if strings.TrimSpace(c.Query("q")) == "" {
		handler.RespondError(c, apperrors.BadRequest("search term is required", nil))
		return
	}
	h.ListPatients(c)
}

func (h *Handler) ListDeleted(c *gin.Context) {
	records, ok := h.list(c, true)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) SoftDelete(c *gin.Context) {
	if err := h.service.SoftDelete(c.Request.Context(), handler.Session(c), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": c.Param("id"), "is_deleted": true}))
}

func (h *Handler) Restore(c *gin.Context) {
	if err := h.service.Restore(c.Request.Context(), handler.Session(c), c.Param("id")); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": c.Param("id"), "is_deleted": false}))
}

func (h *Handler) DeleteAll(c *gin.Context) {
	t, err := parseTypeQuery(c)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	n, err := h.service.DeleteAll(c.Request.Context(), handler.Session(c), t)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deleted": n}))
}

func (h *Handler) ExportPatients(c *gin.Context) {
	records, ok := h.list(c, false)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, report.RecordsTable(records)); err != nil {
		handler.RespondError(c, apperrors.Internal(err))
		return
	}
	handler.Attachment(c, report.RecordsFilename)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) PrintPatients(c *gin.Context) {
	records, ok := h.list(c, false)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, report.PrintTemplateName, report.RecordsTable(records))
}
