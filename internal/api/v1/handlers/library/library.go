// Package library serves the per-user diagram library routes. Failures
// answer with plain-text bodies that clients match on.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/umlforge/umlforge/internal/services/diagram"
	"github.com/umlforge/umlforge/pkg/httpext"
)

// validate caches struct info across requests
var validate = validator.New(validator.WithRequiredStructEnabled())

type signupRequest struct {
	UID   string `json:"uid" validate:"required"`
	Email string `json:"email"`
}

type userRequest struct {
	UID string `json:"uid" validate:"required"`
}

type umlRequest struct {
	UMLID string `json:"uml_id" validate:"required"`
}

type ownedUMLRequest struct {
	UID   string `json:"uid" validate:"required"`
	UMLID string `json:"uml_id" validate:"required"`
}

type documentFields struct {
	Content     string `json:"content"`
	Privacy     string `json:"privacy"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Diagram     string `json:"diagram"`
}

func (d documentFields) uml() diagram.UML {
	return diagram.UML{
		Content:     d.Content,
		Privacy:     d.Privacy,
		Name:        d.Name,
		Description: d.Description,
		Diagram:     d.Diagram,
	}
}

type createRequest struct {
	UID string `json:"uid" validate:"required"`
	documentFields
}

type updateRequest struct {
	UMLID string `json:"uml_id" validate:"required"`
	documentFields
}

func decodeRequest(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// HandleSignup creates an empty library for a newly signed-up account.
func HandleSignup(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeRequest(r, &req); err != nil {
		log.Warn().Err(err).Msg("Rejected signup request")
		httpext.TextError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := svc.CreateUser(r.Context(), req.UID); err != nil {
		if errors.Is(err, diagram.ErrUserExists) {
			httpext.TextError(w, "User already exists.", http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Str("uid", req.UID).Msg("Failed to create user")
		httpext.TextError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("uid", req.UID).Msg("User created")
	httpext.Json(w, http.StatusOK, req)
}

// HandleLogin reports whether the account has a library.
func HandleLogin(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeRequest(r, &req); err != nil {
		httpext.TextError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := svc.UserExists(r.Context(), req.UID)
	if err != nil {
		log.Error().Err(err).Str("uid", req.UID).Msg("Failed to look up user")
		httpext.TextError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !exists {
		httpext.TextError(w, "User does not exist", http.StatusBadRequest)
		return
	}
	httpext.Text(w, http.StatusOK, "User exists")
}

func HandleUserDiagrams(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	const failure = "Could not get user's uml diagrams."

	var req userRequest
	if err := decodeRequest(r, &req); err != nil {
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}

	entries, err := svc.UserDiagrams(r.Context(), req.UID)
	if err != nil {
		log.Warn().Err(err).Str("uid", req.UID).Msg("Failed to list user diagrams")
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}
	httpext.Json(w, http.StatusOK, entries)
}

func HandleDiagram(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	const failure = "Could not get uml."

	var req umlRequest
	if err := decodeRequest(r, &req); err != nil {
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}

	doc, err := svc.Diagram(r.Context(), req.UMLID)
	if err != nil {
		log.Warn().Err(err).Str("uml_id", req.UMLID).Msg("Failed to get diagram")
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}
	httpext.Json(w, http.StatusOK, doc)
}

// HandlePublicDiagrams lists public diagrams by category flags c, s, u, a
// and seq, plus an optional nameContains substring.
func HandlePublicDiagrams(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	body, err := httpext.DecodeBody(r)
	if err != nil {
		httpext.TextError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := diagram.Filter{
		Class:    body.Truthy("c"),
		State:    body.Truthy("s"),
		UseCase:  body.Truthy("u"),
		Activity: body.Truthy("a"),
		Sequence: body.Truthy("seq"),
	}
	if !body.Null("nameContains") {
		name, ok := body.String("nameContains")
		if !ok {
			httpext.TextError(w, "nameContains must be a string.", http.StatusBadRequest)
			return
		}
		filter.NameContains = name
	}

	entries, err := svc.PublicDiagrams(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list public diagrams")
		httpext.TextError(w, err.Error(), http.StatusBadRequest)
		return
	}
	httpext.Json(w, http.StatusOK, entries)
}

func HandleCreateDiagram(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	const failure = "Could not create new uml, changes to db were not saved."

	var req createRequest
	if err := decodeRequest(r, &req); err != nil {
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}

	id, err := svc.CreateDiagram(r.Context(), req.UID, req.uml())
	if err != nil {
		log.Warn().Err(err).Str("uid", req.UID).Msg("Failed to create diagram")
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}

	log.Info().Str("uid", req.UID).Str("uml_id", id).Msg("Diagram created")
	httpext.Text(w, http.StatusOK, id)
}

func HandleCopyDiagram(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	const failure = "Could not copy uml, changes to db were not saved."

	var req ownedUMLRequest
	if err := decodeRequest(r, &req); err != nil {
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}

	id, err := svc.CopyDiagram(r.Context(), req.UID, req.UMLID)
	if err != nil {
		log.Warn().Err(err).Str("uid", req.UID).Str("uml_id", req.UMLID).Msg("Failed to copy diagram")
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}

	log.Info().Str("uid", req.UID).Str("source_id", req.UMLID).Str("uml_id", id).Msg("Diagram copied")
	httpext.Text(w, http.StatusOK, "Successly copied uml doc")
}

func HandleUpdateDiagram(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	const failure = "Could not update uml, changes to db were not saved."

	var req updateRequest
	if err := decodeRequest(r, &req); err != nil {
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}

	if err := svc.UpdateDiagram(r.Context(), req.UMLID, req.uml()); err != nil {
		log.Warn().Err(err).Str("uml_id", req.UMLID).Msg("Failed to update diagram")
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}
	httpext.Text(w, http.StatusOK, "Successly updated uml doc")
}

func HandleDeleteDiagram(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	const failure = "Could not delete uml, changes to db were not saved."

	var req ownedUMLRequest
	if err := decodeRequest(r, &req); err != nil {
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}

	if err := svc.DeleteDiagram(r.Context(), req.UID, req.UMLID); err != nil {
		log.Warn().Err(err).Str("uid", req.UID).Str("uml_id", req.UMLID).Msg("Failed to delete diagram")
		httpext.TextError(w, failure, http.StatusServiceUnavailable)
		return
	}
	httpext.Text(w, http.StatusOK, "Successly deleted uml doc")
}

// HandleDeleteAccount removes the account's library and every diagram in it.
func HandleDeleteAccount(svc *diagram.Service, w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeRequest(r, &req); err != nil {
		httpext.TextError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := svc.DeleteAccount(r.Context(), req.UID); err != nil {
		log.Warn().Err(err).Str("uid", req.UID).Msg("Failed to delete account")
		httpext.TextError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info().Str("uid", req.UID).Msg("Account deleted")
	httpext.Text(w, http.StatusOK, "Successly deleted account")
}
