package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"outreach/internal/backup"
	"outreach/internal/domain"
	"outreach/internal/engine"
	"outreach/internal/repo"
	"outreach/internal/tracker"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
	Logger   zerolog.Logger
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"validation_failed"`
	Message string         `json:"message" example:"sequence: select a sequence first"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true" example:"{\"field\":\"sequence\"}"`
}

// apiError models the required error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the outreach API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	// Override Huma errors to use the envelope.
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			// Schema/request validation errors are reported as 400.
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(cfg.Logger))
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Outreach API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerToday(group, cfg.Engine)
	registerContacts(group, cfg.Engine)
	registerCompanies(group, cfg.Engine)
	registerSequences(group, cfg.Engine)
	registerSteps(group, cfg.Engine)
	registerTasks(group, cfg.Engine)
	registerBackup(group, cfg.Engine)
	registerEvents(group, cfg.Engine)
	registerOpenAPI(router, api, basePath, cfg.Auth.enabled())

	return router, nil
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		return newAPIError(http.StatusBadRequest, "validation_failed", err.Error(), map[string]any{"field": ve.Field})
	}
	var nf domain.NotFoundError
	if errors.As(err, &nf) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), map[string]any{"kind": nf.Kind, "id": nf.ID})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get(path.Join(basePath, "docs"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string, secured bool) {
	var (
		once sync.Once
		spec []byte
	)
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			oas := api.OpenAPI()
			ensureDefaultErrorResponses(oas)
			if secured {
				applyAuthSecurity(oas, basePath)
			}
			spec, _ = json.Marshal(oas)
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func operations(item *huma.PathItem) []*huma.Operation {
	return []*huma.Operation{
		item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
	}
}

func ensureDefaultErrorResponses(oas *huma.OpenAPI) {
	if oas == nil || oas.Paths == nil {
		return
	}
	for _, item := range oas.Paths {
		for _, op := range operations(item) {
			if op == nil {
				continue
			}
			if op.Responses == nil {
				op.Responses = map[string]*huma.Response{}
			}
			op.Responses["default"] = &huma.Response{
				Description: "Error",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{Ref: "#/components/schemas/ApiError"},
					},
				},
			}
		}
	}
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	oas.Security = security
	healthPath := path.Join("/", basePath, "health")
	for route, item := range oas.Paths {
		for _, op := range operations(item) {
			if op == nil {
				continue
			}
			if route == healthPath {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Outreach API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerToday(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-today",
		Method:      http.MethodGet,
		Path:        "/today",
		Summary:     "Overdue, due today and completed tasks",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body TodayResponse `json:"body"`
	}, error) {
		wl, err := e.Today(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TodayResponse `json:"body"`
		}{Body: todayResponse(wl, e.Clock())}, nil
	})
}

func registerContacts(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-contacts",
		Method:      http.MethodGet,
		Path:        "/contacts",
		Summary:     "List contacts",
	}, func(ctx context.Context, input *struct {
		Status  string `query:"status" enum:"active,paused,completed"`
		Company string `query:"company"`
	}) (*struct {
		Body listResponse[ContactResponse] `json:"body"`
	}, error) {
		s, err := e.State(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		items := []ContactResponse{}
		for _, c := range s.Contacts {
			if input.Status != "" && c.Status != input.Status {
				continue
			}
			if input.Company != "" && c.Company != input.Company {
				continue
			}
			items = append(items, contactResponse(c))
		}
		return &struct {
			Body listResponse[ContactResponse] `json:"body"`
		}{Body: listResponse[ContactResponse]{Items: items}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-contact",
		Method:        http.MethodPost,
		Path:          "/contacts",
		Summary:       "Create a contact",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateContactRequest `json:"body"`
	}) (*struct {
		Body ContactResponse `json:"body"`
	}, error) {
		b := input.Body
		c, err := e.AddContact(ctx, domain.Contact{
			FirstName:    b.FirstName,
			LastName:     b.LastName,
			Email:        b.Email,
			PhoneOffice:  b.PhoneOffice,
			PhoneMobile:  b.PhoneMobile,
			Company:      b.Company,
			Status:       b.Status,
			SequenceID:   b.SequenceID,
			ContactNotes: b.Notes,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ContactResponse `json:"body"`
		}{Body: contactResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-contact",
		Method:      http.MethodGet,
		Path:        "/contacts/{contact_id}",
		Summary:     "Get a contact",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ContactID string `path:"contact_id"`
	}) (*struct {
		Body ContactResponse `json:"body"`
	}, error) {
		c, err := e.Contact(ctx, input.ContactID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ContactResponse `json:"body"`
		}{Body: contactResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-contact",
		Method:      http.MethodPatch,
		Path:        "/contacts/{contact_id}",
		Summary:     "Update a contact",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ContactID string               `path:"contact_id"`
		Body      UpdateContactRequest `json:"body"`
	}) (*struct {
		Body ContactResponse `json:"body"`
	}, error) {
		b := input.Body
		c, err := e.EditContact(ctx, input.ContactID, tracker.ContactPatch{
			FirstName:    b.FirstName,
			LastName:     b.LastName,
			Email:        b.Email,
			PhoneOffice:  b.PhoneOffice,
			PhoneMobile:  b.PhoneMobile,
			Status:       b.Status,
			SequenceID:   b.SequenceID,
			ContactNotes: b.Notes,
		}, b.Company)
		if err == nil && c.ID == "" {
			err = domain.Missing("contact", input.ContactID)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ContactResponse `json:"body"`
		}{Body: contactResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-contact",
		Method:        http.MethodDelete,
		Path:          "/contacts/{contact_id}",
		Summary:       "Delete a contact and its tasks",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		ContactID string `path:"contact_id"`
	}) (*struct{}, error) {
		if err := e.DeleteContact(ctx, input.ContactID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "enroll-contact",
		Method:        http.MethodPost,
		Path:          "/contacts/{contact_id}/enroll",
		Summary:       "Enroll a contact in its sequence",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ContactID string         `path:"contact_id"`
		Body      *EnrollRequest `json:"body"`
	}) (*struct {
		Body listResponse[TaskResponse] `json:"body"`
	}, error) {
		if _, err := e.Contact(ctx, input.ContactID); err != nil {
			return nil, handleError(err)
		}
		sequenceID := ""
		if input.Body != nil {
			sequenceID = input.Body.SequenceID
		}
		tasks, err := e.Enroll(ctx, input.ContactID, sequenceID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body listResponse[TaskResponse] `json:"body"`
		}{Body: listResponse[TaskResponse]{Items: mapSlice(tasks, taskResponse)}}, nil
	})
}

func registerCompanies(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-companies",
		Method:      http.MethodGet,
		Path:        "/companies",
		Summary:     "List companies",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body listResponse[CompanyResponse] `json:"body"`
	}, error) {
		s, err := e.State(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body listResponse[CompanyResponse] `json:"body"`
		}{Body: listResponse[CompanyResponse]{Items: mapSlice(s.Companies, companyResponse)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-company-notes",
		Method:      http.MethodPut,
		Path:        "/companies/notes",
		Summary:     "Set the notes of a company, creating it if needed",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CompanyNotesRequest `json:"body"`
	}) (*struct {
		Body CompanyResponse `json:"body"`
	}, error) {
		co, err := e.SetCompanyNotes(ctx, input.Body.Name, input.Body.Notes)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CompanyResponse `json:"body"`
		}{Body: companyResponse(co)}, nil
	})
}

func registerSequences(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-sequences",
		Method:      http.MethodGet,
		Path:        "/sequences",
		Summary:     "List sequences",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body listResponse[SequenceResponse] `json:"body"`
	}, error) {
		s, err := e.State(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body listResponse[SequenceResponse] `json:"body"`
		}{Body: listResponse[SequenceResponse]{Items: mapSlice(s.Sequences, sequenceResponse)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-sequence",
		Method:        http.MethodPost,
		Path:          "/sequences",
		Summary:       "Create a sequence",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateSequenceRequest `json:"body"`
	}) (*struct {
		Body SequenceResponse `json:"body"`
	}, error) {
		seq, err := e.AddSequence(ctx, input.Body.Name, input.Body.Description)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SequenceResponse `json:"body"`
		}{Body: sequenceResponse(seq)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-sequence",
		Method:      http.MethodGet,
		Path:        "/sequences/{sequence_id}",
		Summary:     "Get a sequence with its steps",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		SequenceID string `path:"sequence_id"`
	}) (*struct {
		Body SequenceResponse `json:"body"`
	}, error) {
		d, err := e.Sequence(ctx, input.SequenceID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SequenceResponse `json:"body"`
		}{Body: sequenceDetailResponse(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-sequence",
		Method:      http.MethodPatch,
		Path:        "/sequences/{sequence_id}",
		Summary:     "Rename or describe a sequence",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		SequenceID string                `path:"sequence_id"`
		Body       UpdateSequenceRequest `json:"body"`
	}) (*struct {
		Body SequenceResponse `json:"body"`
	}, error) {
		if _, err := e.UpdateSequence(ctx, input.SequenceID, tracker.SequencePatch{
			Name:        input.Body.Name,
			Description: input.Body.Description,
		}); err != nil {
			return nil, handleError(err)
		}
		d, err := e.Sequence(ctx, input.SequenceID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SequenceResponse `json:"body"`
		}{Body: sequenceDetailResponse(d)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-sequence",
		Method:        http.MethodDelete,
		Path:          "/sequences/{sequence_id}",
		Summary:       "Delete a sequence with its steps and tasks",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		SequenceID string `path:"sequence_id"`
	}) (*struct{}, error) {
		if err := e.DeleteSequence(ctx, input.SequenceID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-step",
		Method:        http.MethodPost,
		Path:          "/sequences/{sequence_id}/steps",
		Summary:       "Append a step to a sequence",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		SequenceID string `path:"sequence_id"`
	}) (*struct {
		Body StepResponse `json:"body"`
	}, error) {
		if _, err := e.Sequence(ctx, input.SequenceID); err != nil {
			return nil, handleError(err)
		}
		st, err := e.AddStep(ctx, input.SequenceID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StepResponse `json:"body"`
		}{Body: stepResponse(st)}, nil
	})
}

func registerSteps(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "update-step",
		Method:      http.MethodPatch,
		Path:        "/steps/{step_id}",
		Summary:     "Update a step",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		StepID string            `path:"step_id"`
		Body   UpdateStepRequest `json:"body"`
	}) (*struct {
		Body StepResponse `json:"body"`
	}, error) {
		st, err := e.UpdateStep(ctx, input.StepID, tracker.StepPatch{
			Order:      input.Body.Order,
			ActionType: input.Body.ActionType,
			WaitDays:   input.Body.WaitDays,
			WaitHours:  input.Body.WaitHours,
		})
		if err == nil && st.ID == "" {
			err = domain.Missing("step", input.StepID)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StepResponse `json:"body"`
		}{Body: stepResponse(st)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-step",
		Method:        http.MethodDelete,
		Path:          "/steps/{step_id}",
		Summary:       "Delete a step and its tasks",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		StepID string `path:"step_id"`
	}) (*struct{}, error) {
		if err := e.DeleteStep(ctx, input.StepID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
	}, func(ctx context.Context, input *struct {
		ContactID string `query:"contact_id"`
		Pending   bool   `query:"pending"`
	}) (*struct {
		Body listResponse[TaskResponse] `json:"body"`
	}, error) {
		tasks, err := e.ListTasks(ctx, engine.TaskFilter{ContactID: input.ContactID, Pending: input.Pending})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body listResponse[TaskResponse] `json:"body"`
		}{Body: listResponse[TaskResponse]{Items: mapSlice(tasks, taskResponse)}}, nil
	})

	type taskOutput struct {
		Body TaskResponse `json:"body"`
	}
	respond := func(taskID string, t domain.Task, err error) (*taskOutput, error) {
		if err == nil && t.ID == "" {
			err = domain.Missing("task", taskID)
		}
		if err != nil {
			return nil, handleError(err)
		}
		return &taskOutput{Body: taskResponse(t)}, nil
	}

	huma.Register(api, huma.Operation{
		OperationID: "complete-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/complete",
		Summary:     "Mark a task done",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*taskOutput, error) {
		t, err := e.CompleteTask(ctx, input.TaskID)
		return respond(input.TaskID, t, err)
	})

	huma.Register(api, huma.Operation{
		OperationID: "snooze-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{task_id}/snooze",
		Summary:     "Push a pending task back",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		TaskID string             `path:"task_id"`
		Body   *SnoozeTaskRequest `json:"body"`
	}) (*taskOutput, error) {
		hours := 0
		if input.Body != nil {
			hours = input.Body.Hours
		}
		t, err := e.SnoozeTask(ctx, input.TaskID, hours)
		return respond(input.TaskID, t, err)
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{task_id}",
		Summary:     "Edit task notes",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		TaskID string            `path:"task_id"`
		Body   UpdateTaskRequest `json:"body"`
	}) (*taskOutput, error) {
		t, err := e.EditTaskNotes(ctx, input.TaskID, input.Body.Notes)
		return respond(input.TaskID, t, err)
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/tasks/{task_id}",
		Summary:       "Delete a task",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		TaskID string `path:"task_id"`
	}) (*struct{}, error) {
		if err := e.DeleteTask(ctx, input.TaskID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerBackup(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "export-state",
		Method:      http.MethodGet,
		Path:        "/export",
		Summary:     "Download a backup of the whole state",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Format string `query:"format" enum:"json,yaml" default:"json"`
	}) (*struct {
		ContentType        string `header:"Content-Type"`
		ContentDisposition string `header:"Content-Disposition"`
		Body               []byte
	}, error) {
		format, err := backup.ParseFormat(input.Format)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		data, err := e.Export(ctx, format)
		if err != nil {
			return nil, handleError(err)
		}
		contentType := "application/json"
		if format == backup.FormatYAML {
			contentType = "application/yaml"
		}
		return &struct {
			ContentType        string `header:"Content-Type"`
			ContentDisposition string `header:"Content-Disposition"`
			Body               []byte
		}{
			ContentType:        contentType,
			ContentDisposition: fmt.Sprintf(`attachment; filename="outreach-backup.%s"`, format),
			Body:               data,
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "import-state",
		Method:      http.MethodPost,
		Path:        "/import",
		Summary:     "Replace the whole state with a backup",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Format  string `query:"format" enum:"json,yaml" default:"json"`
		RawBody []byte
	}) (*struct {
		Body StateSummaryResponse `json:"body"`
	}, error) {
		format, err := backup.ParseFormat(input.Format)
		if err != nil {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
		}
		s, err := e.Import(ctx, input.RawBody, format)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StateSummaryResponse `json:"body"`
		}{Body: stateSummary(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reset-state",
		Method:      http.MethodPost,
		Path:        "/reset",
		Summary:     "Discard everything and restore the default data",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body StateSummaryResponse `json:"body"`
	}, error) {
		s, err := e.Reset(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body StateSummaryResponse `json:"body"`
		}{Body: stateSummary(s)}, nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List recent events",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind" enum:"contact,company,sequence,step,task,state"`
		EntityID   string `query:"entity_id"`
		Limit      int    `query:"limit" default:"50"`
		Cursor     string `query:"cursor"`
	}) (*struct {
		Body paginatedEvents `json:"body"`
	}, error) {
		limit := normalizeLimit(input.Limit)
		var cursorID int64
		if input.Cursor != "" {
			parsed, err := strconv.ParseInt(input.Cursor, 10, 64)
			if err != nil {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid cursor", map[string]any{"cursor": input.Cursor})
			}
			cursorID = parsed
		}
		items, err := e.ListEvents(ctx, limit+1, cursorID, repo.EventFilter{
			Type:       input.Type,
			EntityKind: input.EntityKind,
			EntityID:   input.EntityID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		resp := paginatedEvents{Items: []EventResponse{}}
		if len(items) > limit {
			items = items[:limit]
			resp.NextCursor = strconv.FormatInt(items[limit-1].ID, 10)
		}
		resp.Items = mapSlice(items, eventResponse)
		return &struct {
			Body paginatedEvents `json:"body"`
		}{Body: resp}, nil
	})
}

func normalizeLimit(in int) int {
	if in <= 0 {
		return 50
	}
	if in > 200 {
		return 200
	}
	return in
}
