package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/umlforge/umlforge/internal/api/v1/handlers/library"
	"github.com/umlforge/umlforge/internal/api/v1/handlers/query"
	"github.com/umlforge/umlforge/internal/api/v1/handlers/render"
	"github.com/umlforge/umlforge/internal/api/v1/middleware"
	"github.com/umlforge/umlforge/internal/services"
	"github.com/umlforge/umlforge/internal/services/diagram"
)

// RegisterRoutes mounts every route at the root of router. POST routes also
// accept OPTIONS so CORS preflight requests reach the middleware.
func RegisterRoutes(router *mux.Router, services *services.Services) {
	router.Use(middleware.RequestLogger, mux.CORSMethodMiddleware(router), middleware.CORS)

	router.HandleFunc("/health", HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/test", HandleTest).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)

	// Diagram rendering and text routes
	router.HandleFunc("/fetch-plant-uml", func(w http.ResponseWriter, r *http.Request) {
		render.HandleFetchPlantUML(services.GetPlantUMLService(), w, r)
	}).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/add-scale-to-uml", render.HandleAddScale).Methods(http.MethodPost, http.MethodOptions)

	// Assistant routes
	router.HandleFunc("/query-assistant-code-generator", func(w http.ResponseWriter, r *http.Request) {
		query.HandleCodeGenerator(services.GetAssistantGateway(), services.GetGeneratorAssistantID(), w, r)
	}).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/query-assistant-code-examiner", func(w http.ResponseWriter, r *http.Request) {
		query.HandleCodeExaminer(services.GetAssistantGateway(), services.GetExaminerAssistantID(), w, r)
	}).Methods(http.MethodPost, http.MethodOptions)

	// Diagram library routes
	libraryRoutes := map[string]func(*diagram.Service, http.ResponseWriter, *http.Request){
		"/google-signup":         library.HandleSignup,
		"/google-login":          library.HandleLogin,
		"/get-user-uml":          library.HandleUserDiagrams,
		"/get-uml":               library.HandleDiagram,
		"/get-all-uml":           library.HandlePublicDiagrams,
		"/create-new-uml":        library.HandleCreateDiagram,
		"/copy-uml":              library.HandleCopyDiagram,
		"/update-uml":            library.HandleUpdateDiagram,
		"/delete-uml":            library.HandleDeleteDiagram,
		"/delete-google-account": library.HandleDeleteAccount,
	}
	for path, handle := range libraryRoutes {
		handle := handle
		router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			handle(services.GetDiagramService(), w, r)
		}).Methods(http.MethodPost, http.MethodOptions)
	}
}
