package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"patron-crm-go/internal/domain/graph"
	relationsdomain "patron-crm-go/internal/domain/relations"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// bind decodes and validates a request body, writing the 400 response itself.
func bind(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_without":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(messages, "; ")
}

type domainError struct {
	target  error
	status  int
	code    string
	message string
}

var domainErrors = []domainError{
	{graph.ErrPatronNotFound, http.StatusNotFound, "patron_not_found", "patron not found"},
	{graph.ErrHouseholdNotFound, http.StatusNotFound, "household_not_found", "household not found"},
	{graph.ErrRelationshipNotFound, http.StatusNotFound, "relationship_not_found", "relationship not found"},
	{graph.ErrMemberNotFound, http.StatusNotFound, "member_not_found", "household member not found"},
	{relationsdomain.ErrLinkNotFound, http.StatusNotFound, "link_not_found", "household link not found"},

	{graph.ErrSamePatron, http.StatusBadRequest, "same_patron", "a patron cannot be related to themselves"},
	{graph.ErrInvalidType, http.StatusBadRequest, "invalid_type", "invalid relationship type"},
	{graph.ErrRoleRequired, http.StatusBadRequest, "role_required", "role is required"},
	{graph.ErrNameRequired, http.StatusBadRequest, "name_required", "household name is required"},
	{graph.ErrExternalContactRequired, http.StatusBadRequest, "external_contact_required", "external contact name is required"},
	{graph.ErrInvalidHeadChoice, http.StatusBadRequest, "invalid_head_choice", "new head must be a remaining member"},

	{graph.ErrDuplicateRelationship, http.StatusConflict, "duplicate_relationship", "relationship already exists"},
	{graph.ErrAlreadyInHousehold, http.StatusConflict, "already_in_household", "patron already belongs to a household"},
	{graph.ErrNotInHousehold, http.StatusConflict, "not_in_household", "patron is not in a household"},
	{graph.ErrAlreadyHouseholdMember, http.StatusConflict, "already_household_member", "patrons already share a household"},
	{graph.ErrHouseholdConflict, http.StatusConflict, "household_conflict", "patron belongs to another household"},
	{graph.ErrSameHousehold, http.StatusConflict, "same_household", "patron is already in that household"},
	{graph.ErrHeadChoiceRequired, http.StatusConflict, "head_choice_required", "a new head must be chosen"},
	{graph.ErrConflictUnresolved, http.StatusConflict, "conflict_unresolved", "household conflict is not resolved"},
	{graph.ErrLinkClosed, http.StatusConflict, "link_closed", "household link is closed"},
	{graph.ErrLinkStale, http.StatusConflict, "link_stale", "household link is out of date"},
	{graph.ErrInvalidLinkTransition, http.StatusConflict, "invalid_link_transition", "household link cannot move to that stage"},
	{graph.ErrPatronInUse, http.StatusConflict, "patron_in_use", "patron is still referenced"},
}

// writeDomainError maps engine errors to responses. Known errors are logged as
// business errors, everything else as internal.
func (h *Handlers) writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error, args ...any) {
	if reqID := chimw.GetReqID(r.Context()); reqID != "" {
		args = append(args, "request_id", reqID)
	}
	for _, de := range domainErrors {
		if errors.Is(err, de.target) {
			h.log.BusinessError(op+": "+de.message, err, args...)
			writeError(w, de.status, de.code, de.message)
			return
		}
	}
	h.log.InternalError(op+": operation failed", err, args...)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
