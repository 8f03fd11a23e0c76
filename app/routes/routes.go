package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"postfeed/app/controllers"
	"postfeed/app/logger"
	"postfeed/app/middleware"
)

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(postService controllers.PostService, log *logger.Logger) (*mux.Router, error) {
	if log == nil {
		log = logger.NewNop()
	}

	docs, err := controllers.NewDocsController()
	if err != nil {
		return nil, err
	}
	postController := controllers.NewPostController(postService, log)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(controllers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(controllers.MethodNotAllowed)

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recoverer(log))

	router.HandleFunc("/healthz", controllers.Health).Methods("GET")

	// API routes
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/openapi.json", docs.JSON).Methods("GET")
	api.HandleFunc("/openapi.yaml", docs.YAML).Methods("GET")

	// Posts are served both under /api and at the root.
	for _, r := range []*mux.Router{api, router} {
		posts := r.PathPrefix("/posts").Subrouter()
		posts.HandleFunc("", postController.Index).Methods("GET")
		posts.HandleFunc("/{id}", postController.Delete).Methods("DELETE")
	}

	return router, nil
}
