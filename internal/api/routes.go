package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// HealthFunc reports whether the service can reach its storage.
type HealthFunc func(ctx context.Context) error

// RegisterRoutes sets up all routes for the application. Numeric segments
// are constrained so /task/all and friends never reach the {id} handlers.
func RegisterRoutes(router *mux.Router, tasks *TaskController, entries *TimeEntryController) {
	router.HandleFunc("/task/all", tasks.ListAll).Methods(http.MethodGet)
	router.HandleFunc("/task/running", tasks.ListRunning).Methods(http.MethodGet)
	router.HandleFunc("/task/stopped", tasks.ListStopped).Methods(http.MethodGet)
	router.HandleFunc("/task", tasks.Create).Methods(http.MethodPost)
	router.HandleFunc("/task/{id:[0-9]+}", tasks.Get).Methods(http.MethodGet)
	router.HandleFunc("/task/{id:[0-9]+}", tasks.Update).Methods(http.MethodPatch)
	router.HandleFunc("/task/{id:[0-9]+}", tasks.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/task/{id:[0-9]+}/timeentries", tasks.TimeEntries).Methods(http.MethodGet)
	router.HandleFunc("/task/{id:[0-9]+}/start", tasks.Start).Methods(http.MethodPost)
	router.HandleFunc("/task/{id:[0-9]+}/stop", tasks.Stop).Methods(http.MethodPost)
	router.HandleFunc("/task/{id:[0-9]+}/subtasks/{subtask_id:[0-9]+}", tasks.LinkSubtask).Methods(http.MethodPut)
	router.HandleFunc("/task/{id:[0-9]+}/subtasks/{subtask_id:[0-9]+}", tasks.UnlinkSubtask).Methods(http.MethodDelete)

	router.HandleFunc("/timeentry/running", entries.ListRunning).Methods(http.MethodGet)
	router.HandleFunc("/timeentry/running/{task_id:[0-9]+}", entries.ListRunning).Methods(http.MethodGet)
	router.HandleFunc("/timeentry/stopped", entries.ListStopped).Methods(http.MethodGet)
	router.HandleFunc("/timeentry/stopped/{task_id:[0-9]+}", entries.ListStopped).Methods(http.MethodGet)
	router.HandleFunc("/timeentry/{id:[0-9]+}", entries.Get).Methods(http.MethodGet)
	router.HandleFunc("/timeentry/{id:[0-9]+}", entries.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/timeentry/{id:[0-9]+}/task", entries.Task).Methods(http.MethodGet)
	router.HandleFunc("/timeentry/{id:[0-9]+}/stop", entries.Stop).Methods(http.MethodPost)
	router.HandleFunc("/timeentry/{id:[0-9]+}/start/{timestamp:[0-9]+}", entries.SetStart).Methods(http.MethodPatch)
	router.HandleFunc("/timeentry/{id:[0-9]+}/end/{timestamp:[0-9]+}", entries.SetEnd).Methods(http.MethodPatch)
}

// NewHandler builds the router with every route, the health check and the
// JSON fallbacks, wrapped in request-id and access-log middleware.
func NewHandler(tasks *TaskController, entries *TimeEntryController, health HealthFunc, logger *log.Logger) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, tasks, entries)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				log.Printf("[warn] health check: %v", err)
				writeErr(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if logger == nil {
		logger = log.Default()
	}
	return withRequestID(withAccessLog(logger)(router))
}
